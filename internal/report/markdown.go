package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/storepreview/internal/database"
	"github.com/nao1215/storepreview/internal/model"
)

// MarkdownWriter prints GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the capture summary.
func (w *MarkdownWriter) Write(s *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Storefront Preview: " + s.Name)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", s.URL},
			{"Output", "`" + s.OutputPath + "`"},
			{"Title", s.Title},
			{"Captured", s.CapturedAt.Format(timeLayout)},
			{"Fetched", strconv.Itoa(s.FetchedBytes) + " bytes"},
			{"Size", strconv.Itoa(s.SizeKB) + " KB"},
			{"Scripts remaining", strconv.Itoa(s.RemainingScripts)},
		},
	})
	md.PlainText("")

	w.writeStats(md, s.Stats)
	w.writeHosts(md, s.ScriptHosts)
	w.writeTrackers(md, s.Trackers)
	w.writeAlert(md, s)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeStats(md *markdown.Markdown, st model.Stats) {
	md.H2("Sanitizing")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Change", "Count"},
		Rows: [][]string{
			{"Scripts kept", strconv.Itoa(st.ScriptsKept)},
			{"Scripts removed", strconv.Itoa(st.ScriptsRemoved)},
			{"Noscript blocks removed", strconv.Itoa(st.NoscriptsRemoved)},
			{"Chat widgets removed", strconv.Itoa(st.WidgetsRemoved)},
			{"Alternate links removed", strconv.Itoa(st.AlternateLinksRemoved)},
			{"URLs rewritten", strconv.Itoa(st.URLsRewritten)},
		},
	})
	md.PlainText("")

	if st.ScriptsKept+st.ScriptsRemoved == 0 {
		return
	}
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Script verdicts"),
		piechart.WithShowData(true),
	)
	if st.ScriptsKept > 0 {
		chart.LabelAndIntValue("Kept", uint64(st.ScriptsKept)) //nolint:gosec // counts are non-negative
	}
	if st.ScriptsRemoved > 0 {
		chart.LabelAndIntValue("Removed", uint64(st.ScriptsRemoved)) //nolint:gosec // counts are non-negative
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeHosts(md *markdown.Markdown, hosts []string) {
	md.H2("External script hosts")
	md.PlainText("")
	if len(hosts) == 0 {
		md.PlainText("No external scripts remain.")
		md.PlainText("")
		return
	}
	md.BulletList(hosts...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeTrackers(md *markdown.Markdown, trackers []model.TrackerID) {
	if len(trackers) == 0 {
		return
	}
	md.H2("Tracking IDs")
	md.PlainText("")
	rows := make([][]string, 0, len(trackers))
	remaining := 0
	for _, tr := range trackers {
		status := "removed"
		if tr.Remaining {
			status = "remaining"
			remaining++
		}
		rows = append(rows, []string{tr.Type, "`" + tr.ID + "`", status})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Service", "ID", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
	if remaining > 0 {
		md.Warningf("%d tracking IDs remain in the preview.", remaining)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *model.Summary) {
	switch {
	case s.Stats.ScriptsRemoved == 0:
		md.Tip("No scripts needed removing.")
	case s.RemainingScripts > 0:
		md.Note(strconv.Itoa(s.RemainingScripts) + " scripts still run in the preview.")
	}
	md.PlainText("")
}

// WriteHistory renders records as a table.
func (w *MarkdownWriter) WriteHistory(records []database.CaptureRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Capture History")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No captures recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.CapturedAt.Local().Format(timeLayout),
			r.Name,
			r.URL,
			strconv.Itoa(sizeKB(r.OutputBytes)) + " KB",
			strconv.Itoa(r.RemainingScripts),
			strconv.Itoa(r.ScriptsRemoved),
			r.Title,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Captured", "Name", "URL", "Size", "Scripts", "Removed", "Title"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}
