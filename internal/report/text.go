package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nao1215/storepreview/internal/database"
	"github.com/nao1215/storepreview/internal/model"
)

// TextWriter prints plain console output.
type TextWriter struct {
	baseWriter

	// details adds title, removal counts and script hosts.
	details bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithDetails prints the sanitizing details under the summary lines.
func WithDetails(details bool) TextWriterOption {
	return func(w *TextWriter) {
		w.details = details
	}
}

// NewTextWriter creates a TextWriter.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write prints "Wrote <path>" and "Size: <n> KB, scripts remaining: <m>".
func (w *TextWriter) Write(s *model.Summary) (int, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Wrote %s\n", s.OutputPath)
	fmt.Fprintf(&sb, "Size: %d KB, scripts remaining: %d\n", s.SizeKB, s.RemainingScripts)

	if w.details {
		w.writeDetails(&sb, s)
	}
	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeDetails(sb *strings.Builder, s *model.Summary) {
	if s.Title != "" {
		fmt.Fprintf(sb, "  Title:             %s\n", s.Title)
	}
	fmt.Fprintf(sb, "  Scripts kept:      %d\n", s.Stats.ScriptsKept)
	fmt.Fprintf(sb, "  Scripts removed:   %d\n", s.Stats.ScriptsRemoved)
	fmt.Fprintf(sb, "  Noscripts removed: %d\n", s.Stats.NoscriptsRemoved)
	fmt.Fprintf(sb, "  Widgets removed:   %d\n", s.Stats.WidgetsRemoved)
	fmt.Fprintf(sb, "  Alternate links:   %d\n", s.Stats.AlternateLinksRemoved)
	fmt.Fprintf(sb, "  URLs rewritten:    %d\n", s.Stats.URLsRewritten)
	for _, h := range s.ScriptHosts {
		fmt.Fprintf(sb, "  [+] script host %s\n", h)
	}
	for _, tr := range s.Trackers {
		mark := "-"
		if tr.Remaining {
			mark = "!"
		}
		fmt.Fprintf(sb, "  [%s] %s %s\n", mark, tr.Type, tr.ID)
	}
}

// WriteHistory prints one aligned row per capture.
func (w *TextWriter) WriteHistory(records []database.CaptureRecord) (int, error) {
	if len(records) == 0 {
		return io.WriteString(w.output, "No captures recorded.\n")
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CAPTURED\tNAME\tSIZE\tSCRIPTS\tREMOVED\tURL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d KB\t%d\t%d\t%s\n",
			r.CapturedAt.Local().Format(timeLayout),
			r.Name,
			sizeKB(r.OutputBytes),
			r.RemainingScripts,
			r.ScriptsRemoved,
			r.URL,
		)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return io.WriteString(w.output, sb.String())
}

func sizeKB(n int) int {
	return (n + 512) / 1024
}
