package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/storepreview/internal/fetch"
	"github.com/nao1215/storepreview/internal/model"
	"github.com/nao1215/storepreview/internal/preview"
	"github.com/nao1215/storepreview/internal/sanitize"
)

// Step names, in pipeline order.
const (
	StepFetch     = "fetch"
	StepStrip     = "strip"
	StepNormalize = "normalize"
	StepInject    = "inject"
	StepWrite     = "write"
	StepRecord    = "record"
)

// FetchStep retrieves the page and fills Raw and Document.
type FetchStep struct {
	fetcher  fetch.Fetcher
	progress io.Writer
	logger   *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithFetchProgress prints "Fetching <url>..." and "Fetched <n> bytes" to w.
func WithFetchProgress(w io.Writer) FetchStepOption {
	return func(s *FetchStep) {
		s.progress = w
	}
}

// WithFetchLogger sets the logger.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// NewFetchStep creates a FetchStep.
func NewFetchStep(fetcher fetch.Fetcher, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{
		fetcher:  fetcher,
		progress: io.Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return StepFetch
}

// Do fetches c.Target.URL.
func (s *FetchStep) Do(ctx context.Context, c *model.Capture) error {
	_, _ = fmt.Fprintf(s.progress, "Fetching %s...\n", c.Target.URL)

	res, err := s.fetcher.Fetch(ctx, c.Target.URL)
	if err != nil {
		return err
	}

	c.StatusCode = res.StatusCode
	c.ContentType = res.ContentType
	c.FetchedBytes = res.Bytes
	c.Raw = res.HTML
	c.Document = res.HTML

	_, _ = fmt.Fprintf(s.progress, "Fetched %d bytes\n", res.Bytes)
	s.logger.Debug("document fetched", "name", c.Target.Name, "bytes", res.Bytes, "charset", res.Charset)
	return nil
}

// StripStep removes alternate links, noscripts, chat widgets and scripts.
type StripStep struct {
	sanitizer *sanitize.Sanitizer
}

// NewStripStep creates a StripStep.
func NewStripStep(s *sanitize.Sanitizer) *StripStep {
	return &StripStep{sanitizer: s}
}

// Name returns the step name.
func (s *StripStep) Name() string {
	return StepStrip
}

// Do strips c.Document.
func (s *StripStep) Do(_ context.Context, c *model.Capture) error {
	doc, stats := s.sanitizer.Strip(c.Document)
	c.Document = doc
	c.Stats.Add(stats)
	return nil
}

// NormalizeStep absolutizes root-relative and protocol-relative URLs and
// pins the <base> element to the capture's origin.
type NormalizeStep struct{}

// NewNormalizeStep creates a NormalizeStep.
func NewNormalizeStep() *NormalizeStep {
	return &NormalizeStep{}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return StepNormalize
}

// Do normalizes c.Document.
func (s *NormalizeStep) Do(_ context.Context, c *model.Capture) error {
	if c.Origin == nil || c.Origin.Host == "" {
		return fmt.Errorf("%w: %q", model.ErrInvalidURL, c.Target.URL)
	}
	doc, n := sanitize.Normalize(c.Document, c.Origin)
	c.Document = doc
	c.Stats.URLsRewritten += n
	return nil
}

// InjectStep adds the interactivity shim.
type InjectStep struct{}

// NewInjectStep creates an InjectStep.
func NewInjectStep() *InjectStep {
	return &InjectStep{}
}

// Name returns the step name.
func (s *InjectStep) Name() string {
	return StepInject
}

// Do injects the shim into c.Document.
func (s *InjectStep) Do(_ context.Context, c *model.Capture) error {
	c.Document = sanitize.InjectShim(c.Document)
	return nil
}

// WriteStep writes the preview and fills OutputPath and Summary.
type WriteStep struct {
	writer *preview.Writer
}

// NewWriteStep creates a WriteStep.
func NewWriteStep(w *preview.Writer) *WriteStep {
	return &WriteStep{writer: w}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return StepWrite
}

// Do writes c.Document.
func (s *WriteStep) Do(_ context.Context, c *model.Capture) error {
	path, err := s.writer.Write(c.Target, c.Document)
	if err != nil {
		return err
	}
	c.OutputPath = path
	c.Summary = preview.Summarize(c)
	return nil
}

// Recorder stores capture summaries.
type Recorder interface {
	InsertCapture(ctx context.Context, s *model.Summary) (int64, error)
}

// RecordStep appends the capture to the history. It is optional.
type RecordStep struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewRecordStep creates a RecordStep.
func NewRecordStep(r Recorder, logger *slog.Logger) *RecordStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStep{recorder: r, logger: logger}
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return StepRecord
}

// Optional reports that history failures never fail a capture.
func (s *RecordStep) Optional() bool {
	return true
}

// Do records c.Summary.
func (s *RecordStep) Do(ctx context.Context, c *model.Capture) error {
	if c.Summary == nil {
		return errors.New("nothing to record: preview was not written")
	}
	id, err := s.recorder.InsertCapture(ctx, c.Summary)
	if err != nil {
		return fmt.Errorf("failed to record capture history: %w", err)
	}
	s.logger.Debug("capture recorded", "name", c.Target.Name, "id", id)
	return nil
}

// Components are the collaborators of a capture pipeline.
type Components struct {
	Fetcher   fetch.Fetcher
	Sanitizer *sanitize.Sanitizer
	Writer    *preview.Writer

	// Recorder is optional; a nil Recorder skips the record step.
	Recorder Recorder

	// Progress receives the fetch progress lines. Nil discards them.
	Progress io.Writer

	Logger *slog.Logger
}

// DefaultPipeline builds fetch, strip, normalize, inject, write and, when a
// Recorder is set, record.
func DefaultPipeline(c Components, opts ...Option) *Pipeline {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	progress := c.Progress
	if progress == nil {
		progress = io.Discard
	}

	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	p.AddSteps(
		NewFetchStep(c.Fetcher, WithFetchProgress(progress), WithFetchLogger(logger)),
		NewStripStep(c.Sanitizer),
		NewNormalizeStep(),
		NewInjectStep(),
		NewWriteStep(c.Writer),
	)
	if c.Recorder != nil {
		p.AddStep(NewRecordStep(c.Recorder, logger))
	}
	return p
}
