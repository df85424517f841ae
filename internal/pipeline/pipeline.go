package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Step is one stage of a pipeline operating on state S.
type Step[S any] interface {
	// Do executes the step. A returned error stops the pipeline.
	Do(ctx context.Context, state S) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// StepFunc adapts a function to the Step interface.
type StepFunc[S any] struct {
	name string
	fn   func(ctx context.Context, state S) error
}

// NewStep creates a named Step from a function.
func NewStep[S any](name string, fn func(ctx context.Context, state S) error) StepFunc[S] {
	return StepFunc[S]{name: name, fn: fn}
}

// Do calls the wrapped function.
func (s StepFunc[S]) Do(ctx context.Context, state S) error {
	return s.fn(ctx, state)
}

// Name returns the step name.
func (s StepFunc[S]) Name() string {
	return s.name
}

// Pipeline executes steps in the order they were added.
type Pipeline[S any] struct {
	steps  []Step[S]
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets a custom logger for the pipeline.
// If not set or nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New creates an empty Pipeline.
func New[S any](opts ...Option) *Pipeline[S] {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return &Pipeline[S]{
		steps:  make([]Step[S], 0),
		logger: c.logger,
	}
}

// AddSteps appends steps to the pipeline.
func (p *Pipeline[S]) AddSteps(steps ...Step[S]) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence and stops at the first error.
// Cancellation is checked before each step; a running step handles its own
// cancellation.
func (p *Pipeline[S]) Execute(ctx context.Context, state S) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.WarnContext(ctx, "pipeline cancelled", "step", step.Name(), "reason", err)
			return err
		}

		start := time.Now()
		p.logger.DebugContext(ctx, "executing step", "step", step.Name())

		if err := step.Do(ctx, state); err != nil {
			p.logger.ErrorContext(ctx, "step failed", "step", step.Name(), "error", err)
			return err
		}

		p.logger.DebugContext(ctx, "step completed", "step", step.Name(), "elapsed", time.Since(start))
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline[S]) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline[S]) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
