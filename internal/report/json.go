package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/storepreview/internal/database"
	"github.com/nao1215/storepreview/internal/model"
)

// JSONWriter prints summaries and history as JSON.
type JSONWriter struct {
	baseWriter
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter. Output is compact unless WithPrettyPrint is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write prints s.
func (w *JSONWriter) Write(s *model.Summary) (int, error) {
	return w.writeJSON(s)
}

// historyEntry is the JSON form of a history record.
type historyEntry struct {
	ID               int64       `json:"id"`
	CaptureID        string      `json:"capture_id,omitempty"`
	Name             string      `json:"name"`
	URL              string      `json:"url"`
	Origin           string      `json:"origin"`
	CapturedAt       time.Time   `json:"captured_at"`
	OutputPath       string      `json:"output_path"`
	Title            string      `json:"title,omitempty"`
	FetchedBytes     int         `json:"fetched_bytes"`
	OutputBytes      int         `json:"output_bytes"`
	RemainingScripts int         `json:"remaining_scripts"`
	ScriptHosts      []string    `json:"script_hosts,omitempty"`
	Stats            model.Stats `json:"stats"`
}

// WriteHistory prints records as a JSON array.
func (w *JSONWriter) WriteHistory(records []database.CaptureRecord) (int, error) {
	entries := make([]historyEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, historyEntry{
			ID:               r.ID,
			CaptureID:        r.CaptureID,
			Name:             r.Name,
			URL:              r.URL,
			Origin:           r.Origin,
			CapturedAt:       r.CapturedAt,
			OutputPath:       r.OutputPath,
			Title:            r.Title,
			FetchedBytes:     r.FetchedBytes,
			OutputBytes:      r.OutputBytes,
			RemainingScripts: r.RemainingScripts,
			ScriptHosts:      r.ScriptHosts,
			Stats:            r.Stats,
		})
	}
	return w.writeJSON(entries)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent != "" {
		data, err = json.MarshalIndent(v, "", w.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}
