// Package pipeline drives a batch over one folder: discover candidate files,
// then for each one, in order, skip-if-done → probe → decide → move or
// transcode, collecting one outcome per file.
//
// Files are processed strictly one at a time. Cancellation is observed only
// between files; an encode that has started runs to completion.
package pipeline
