package flow

import "context"

// Substitution is a template binding resolved per dispatch instead of fixed
// at construction time.
type Substitution interface {
	Resolve(ctx context.Context, c *Connector) (any, error)
}

// SubstitutionFunc adapts a function to the Substitution interface.
type SubstitutionFunc func(ctx context.Context, c *Connector) (any, error)

func (f SubstitutionFunc) Resolve(ctx context.Context, c *Connector) (any, error) {
	return f(ctx, c)
}

// LoopSource yields the elements a flow iterates over. When a flow exhausts
// its steps, the driver consults the source: remaining elements restart the
// step sequence with the next element bound into the substitution table.
//
// The source is resolved fresh on every dispatch, so it may depend on the
// subject's data.
type LoopSource interface {
	Resolve(ctx context.Context, c *Connector) ([]any, error)
}

// StaticLoop is a fixed element sequence.
type StaticLoop []any

func (s StaticLoop) Resolve(context.Context, *Connector) ([]any, error) {
	return s, nil
}

// LoopFunc computes the element sequence per dispatch.
type LoopFunc func(ctx context.Context, c *Connector) ([]any, error)

func (f LoopFunc) Resolve(ctx context.Context, c *Connector) ([]any, error) {
	return f(ctx, c)
}
