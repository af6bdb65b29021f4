package process

import (
	"context"

	"github.com/kbukum/offlinestt/provider"
)

// SubprocessProvider wraps a Command as a provider.RequestResponse.
// The build function turns the input into a Command, and the parse function
// turns the completed Result into the output type.
type SubprocessProvider[I, O any] struct {
	name      string
	buildCmd  func(I) (Command, error)
	parseOut  func(I, *Result) (O, error)
	available func(context.Context) bool
}

var _ provider.RequestResponse[string, string] = (*SubprocessProvider[string, string])(nil)

// NewSubprocessProvider creates a RequestResponse provider backed by subprocess execution.
func NewSubprocessProvider[I, O any](
	name string,
	buildCmd func(I) (Command, error),
	parseOut func(I, *Result) (O, error),
) *SubprocessProvider[I, O] {
	return &SubprocessProvider[I, O]{
		name:     name,
		buildCmd: buildCmd,
		parseOut: parseOut,
	}
}

// WithAvailabilityCheck sets a custom availability check for the provider.
func (p *SubprocessProvider[I, O]) WithAvailabilityCheck(fn func(context.Context) bool) *SubprocessProvider[I, O] {
	p.available = fn
	return p
}

func (p *SubprocessProvider[I, O]) Name() string { return p.name }

func (p *SubprocessProvider[I, O]) IsAvailable(ctx context.Context) bool {
	if p.available != nil {
		return p.available(ctx)
	}
	return true
}

// Execute builds the command, runs it and parses the result. Process
// failures are returned as-is so callers can map exit codes.
func (p *SubprocessProvider[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var zero O
	cmd, err := p.buildCmd(input)
	if err != nil {
		return zero, err
	}
	result, err := Run(ctx, cmd)
	if err != nil {
		return zero, err
	}
	return p.parseOut(input, result)
}
