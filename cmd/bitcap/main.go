// Command bitcap caps the video bitrate of a folder of recordings: files
// already below the threshold are moved into a compressed subfolder as-is,
// the rest are re-encoded there with ffmpeg and the originals deleted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// version and commit are set at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, errSilentExit) {
			fmt.Fprintf(os.Stderr, "bitcap: %v\n", err)
		}
		os.Exit(1)
	}
}
