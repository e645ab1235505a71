package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/zkrige/DialogSafe/internal/pipeline"
)

// printSummary renders the end-of-run report: the span table followed by a
// one-line outcome. The table style follows whether stdout is a terminal.
func printSummary(w io.Writer, summary pipeline.Summary) {
	if len(summary.Spans) == 0 {
		fmt.Fprintf(w, "No profanity detected; wrote unmodified copy to %s (%.1fs).\n",
			summary.OutputPath, summary.Elapsed.Seconds())
		return
	}

	tw := table.NewWriter()
	if isTerminal(os.Stdout) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.AppendHeader(table.Row{"#", "Start", "End", "Word", "Confidence", "Hits"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	for i, span := range summary.Spans {
		tw.AppendRow(table.Row{
			i + 1,
			formatClock(span.Start),
			formatClock(span.End),
			span.RepresentativeWord(),
			fmt.Sprintf("%.2f", span.MaxConfidence),
			len(span.Hits),
		})
	}
	fmt.Fprintln(w, tw.Render())

	fmt.Fprintf(w, "Censored %d span(s) across %d segment(s) (language %s); wrote %s (%.1fs).\n",
		len(summary.Spans), summary.Segments, summary.Language,
		summary.OutputPath, summary.Elapsed.Seconds())
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// formatClock renders seconds as M:SS.mmm, padding the minutes as needed.
func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds * float64(time.Second))
	minutes := int(d / time.Minute)
	rest := d - time.Duration(minutes)*time.Minute
	return fmt.Sprintf("%d:%06.3f", minutes, rest.Seconds())
}
