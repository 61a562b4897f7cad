package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/storepreview/internal/model"
)

// Step is one stage of a capture.
type Step interface {
	// Do runs the step against the capture.
	Do(ctx context.Context, c *model.Capture) error

	// Name identifies the step in logs and in Capture.Steps.
	Name() string
}

// Optional is implemented by steps whose failure must not fail the capture.
type Optional interface {
	Optional() bool
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against c and returns the first error of a
// required step. Cancellation is checked between steps.
func (p *Pipeline) Execute(ctx context.Context, c *model.Capture) error {
	logger := p.logger.With("capture_id", c.ID, "name", c.Target.Name)

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			logger.Warn("capture cancelled", "step", step.Name(), "reason", err)
			return err
		}

		logger.Debug("executing step", "step", step.Name())

		if err := step.Do(ctx, c); err != nil {
			if isOptional(step) {
				logger.Warn("optional step failed", "step", step.Name(), "error", err)
				continue
			}
			logger.Error("step failed", "step", step.Name(), "error", err)
			return err
		}

		c.Steps = append(c.Steps, step.Name())
	}
	return nil
}

func isOptional(step Step) bool {
	o, ok := step.(Optional)
	return ok && o.Optional()
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
