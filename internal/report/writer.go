package report

import (
	"io"

	"github.com/nao1215/storepreview/internal/database"
	"github.com/nao1215/storepreview/internal/model"
)

// Writer renders capture output.
type Writer interface {
	// Write renders the summary of one capture.
	Write(s *model.Summary) (int, error)

	// WriteHistory renders history records, newest first.
	WriteHistory(records []database.CaptureRecord) (int, error)
}

// MultiWriter writes to several Writers and stops at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a MultiWriter.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes s to every Writer.
func (m *MultiWriter) Write(s *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(s)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory writes records to every Writer.
func (m *MultiWriter) WriteHistory(records []database.CaptureRecord) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(records)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is used for timestamps in text and Markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"
