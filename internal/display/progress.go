package display

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

const barWidth = 30

// Progress renders percent updates for one transcode. On a terminal it
// draws a single redrawn bar; otherwise it prints one plain line per update
// so logs stay readable when piped.
type Progress struct {
	w        io.Writer
	name     string
	duration float64
	bar      *progressbar.ProgressBar
	done     bool
}

// NewProgress starts a renderer for file name with the given total duration
// in seconds. tty selects the redrawn bar.
func NewProgress(w io.Writer, name string, duration float64, tty bool) *Progress {
	p := &Progress{w: w, name: name, duration: duration}
	if tty {
		p.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(name),
			progressbar.OptionSetWidth(barWidth),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerPadding: "░",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	return p
}

// Update surfaces a new percent value and the encoded position in seconds.
func (p *Progress) Update(percent int, elapsed float64) {
	if p.done {
		return
	}
	if p.bar == nil {
		fmt.Fprintf(p.w, "%s: %3d%% (%.1fs/%.1fs)\n", p.name, percent, elapsed, p.duration)
		return
	}
	p.bar.Describe(fmt.Sprintf("%s (%.1fs/%.1fs)", p.name, elapsed, p.duration))
	_ = p.bar.Set(percent)
}

// Close ends the bar line. It is safe to call more than once.
func (p *Progress) Close() {
	if p.done {
		return
	}
	p.done = true
	if p.bar == nil {
		return
	}
	_ = p.bar.Exit()
	fmt.Fprintln(p.w)
}
