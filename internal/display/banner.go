package display

import (
	"fmt"
	"io"

	"github.com/backmassage/bitcap/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, ` _     _ _
| |__ (_) |_ ___ __ _ _ __
| '_ \| | __/ __/ _`+"`"+` | '_ \
| |_) | | || (_| (_| | |_) |
|_.__/|_|\__\___\__,_| .__/
                     |_|
`)
	if term.Enabled() {
		fmt.Fprintln(w, term.NC)
	}
}
