package ffmpeg

import "regexp"

// Failure categories reported alongside a failed encode.
const (
	CategoryEncoder    = "missing encoder"
	CategoryInput      = "invalid input"
	CategoryDiskFull   = "disk full"
	CategoryPermission = "permission denied"
	CategoryTimeout    = "timeout"
	CategoryLaunch     = "launch failed"
	CategoryIO         = "io error"
	CategoryOther      = "ffmpeg error"
)

// Pre-compiled regexes for classifying ffmpeg stderr output. Checked in
// order by [ClassifyFailure]; the first match wins.
var (
	reDiskFull = regexp.MustCompile(
		`(?i)No space left on device|Disk quota exceeded`)

	rePermission = regexp.MustCompile(
		`(?i)Permission denied|Read-only file system|Operation not permitted`)

	reMissingEncoder = regexp.MustCompile(
		`(?i)Unknown encoder|Encoder .* not found|` +
			`Error while opening encoder|` +
			`Error selecting an encoder|` +
			`Automatic encoder selection failed`)

	reInvalidInput = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`moov atom not found|` +
			`could not find codec parameters|` +
			`Error while decoding stream|` +
			`Invalid argument`)
)

var classifiers = []struct {
	re       *regexp.Regexp
	category string
}{
	{reDiskFull, CategoryDiskFull},
	{rePermission, CategoryPermission},
	{reMissingEncoder, CategoryEncoder},
	{reInvalidInput, CategoryInput},
}

// ClassifyFailure maps ffmpeg stderr text to a failure category. Unmatched
// text is CategoryOther.
func ClassifyFailure(stderr string) string {
	for _, c := range classifiers {
		if c.re.MatchString(stderr) {
			return c.category
		}
	}
	return CategoryOther
}
