package report

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/backmassage/bitcap/internal/display"
)

const maxReasonWidth = 60

// Table renders one row per outcome with a totals footer.
func Table(outcomes []Outcome) string {
	if len(outcomes) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Result", "Input", "Output", "Saved", "Detail"})

	var saved int64
	for _, o := range outcomes {
		in, out, delta := "", "", ""
		if o.InputBytes > 0 {
			in = display.FormatBytes(o.InputBytes)
		}
		if o.Kind == Compressed && !o.DryRun {
			out = display.FormatBytes(o.OutputBytes)
			delta = display.FormatBytesWithSign(-o.Saved())
			saved += o.Saved()
		}
		tw.AppendRow(table.Row{o.File, resultLabel(o), in, out, delta, detail(o)})
	}
	tw.AppendFooter(table.Row{"", "", "", "Total", display.FormatBytesWithSign(-saved), ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 6, WidthMax: maxReasonWidth},
	})
	return tw.Render()
}

func resultLabel(o Outcome) string {
	if o.DryRun {
		switch o.Kind {
		case Moved:
			return "would move"
		case Compressed:
			return "would compress"
		}
	}
	return o.Kind.String()
}

func detail(o Outcome) string {
	reason := firstLine(o.Reason)
	if o.Category != "" && reason != "" {
		return o.Category + ": " + reason
	}
	if o.Category != "" {
		return o.Category
	}
	return reason
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
