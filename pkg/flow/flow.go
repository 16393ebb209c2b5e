package flow

import (
	"context"
	"fmt"
)

// entry is one named position in a flow: either a leaf step or a nested flow.
type entry struct {
	name string
	step Step  // nil when sub != nil
	sub  *Flow // nil for leaf steps
}

// Flow is an ordered, named sequence of Steps and/or nested Flows. A Flow is
// immutable after Build and safe for concurrent dispatches; all mutable state
// lives on the Connector and in the session store.
type Flow struct {
	id      string
	scope   Scope
	entries []entry
	index   map[string]int

	triggers      []Trigger
	substitutions map[string]any
	resetOnRun    []string

	loop    LoopSource
	loopVar string
}

// continuable lists the event kinds that may continue an in-flight flow.
// Member lifecycle events only ever start flows via triggers.
func continuable(kind Kind) bool {
	return kind == KindMessage || kind == KindButtonClick
}

// ID returns the flow's unique identifier, used as the token frame prefix.
func (f *Flow) ID() string { return f.id }

// Scope returns the scope the flow's sessions are keyed by.
func (f *Flow) Scope() Scope { return f.scope }

// Check reports whether this flow owns the subject's in-flight session: the
// event kind can continue a flow, the scope matches, and the persisted
// token's outermost frame carries this flow's ID. Undecodable tokens yield
// false here; the manager surfaces them as corrupt state when no flow claims
// them.
func (f *Flow) Check(_ context.Context, c *Connector, scope Scope) bool {
	if !continuable(c.Event) {
		return false
	}
	if c.Event == KindMessage && f.scope != scope {
		return false
	}
	token := c.State(f.scope)
	if token == "" {
		return false
	}
	frames, err := DecodeToken(token)
	if err != nil {
		return false
	}
	return frames[0].Flow == f.id
}

// CheckTriggers reports whether any of the flow's triggers fire for the event.
func (f *Flow) CheckTriggers(ctx context.Context, c *Connector, scope Scope) (bool, error) {
	for _, t := range f.triggers {
		ok, err := t.Check(ctx, c, scope)
		if err != nil {
			return false, fmt.Errorf("trigger check for flow %q: %w", f.id, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Run enters the flow fresh: configured data elements are reset, then the
// driver starts at the first step. For nested flows, path holds the parent
// frames already composing the position.
func (f *Flow) Run(ctx context.Context, c *Connector, path []Frame) (Outcome, error) {
	if len(f.resetOnRun) > 0 {
		data := c.DataFor(f.scope)
		for _, key := range f.resetOnRun {
			delete(data, key)
		}
	}
	return f.step(ctx, c, true, path)
}

// Step resumes the flow from the persisted position for one inbound event.
func (f *Flow) Step(ctx context.Context, c *Connector) (Outcome, error) {
	return f.step(ctx, c, false, nil)
}

// step is the state-machine driver. It decodes the current position, feeds
// the event to the current step (or recurses into a nested flow), computes
// the next position, persists it on the connector, and runs the next step —
// cascading through consecutive non-blocking steps within this one dispatch.
//
// It returns Waiting when a blocking step now owns the next event, or
// Finished when the flow ran out of steps and loop elements. Any error aborts
// the dispatch with the previously persisted token untouched.
func (f *Flow) step(ctx context.Context, c *Connector, initial bool, path []Frame) (Outcome, error) {
	f.mergeSubstitutions(c)

	depth := len(path)
	loopIdx := 0
	nextIdx := 0

	if !initial {
		frames, err := DecodeToken(c.State(f.scope))
		if err != nil {
			return 0, &CorruptStateError{Token: c.State(f.scope), Err: err}
		}
		if len(frames) <= depth || frames[depth].Flow != f.id {
			return 0, &CorruptStateError{Token: c.State(f.scope), Flow: f.id,
				Err: fmt.Errorf("frame stack does not reach flow %q at depth %d", f.id, depth)}
		}
		frame := frames[depth]
		curIdx, ok := f.index[frame.Step]
		if !ok {
			return 0, &CorruptStateError{Token: c.State(f.scope), Flow: f.id, Step: frame.Step}
		}
		loopIdx = frame.Loop

		goBack := c.Event == KindMessage && c.Text == c.Controls.GoBack
		reload := c.Event == KindMessage && c.Text == c.Controls.Reload

		switch {
		case goBack || reload:
			// Consume the control token so it is not reprocessed downstream.
			c.Text = ""
			idx, err := f.returnTarget(curIdx, reload)
			if err != nil {
				return 0, err
			}
			nextIdx = idx
		case f.entries[curIdx].sub != nil:
			sub := f.entries[curIdx].sub
			out, err := sub.step(ctx, c, false, append(path[:depth:depth], frame))
			if err != nil {
				return 0, err
			}
			if out == Waiting {
				// Nesting is transparent: the sub-flow holds the position.
				return Waiting, nil
			}
			// The sub-flow finished; advance past it.
			nextIdx = curIdx + 1
		default:
			out, err := f.entries[curIdx].step.ProcessResponse(ctx, c)
			if err != nil {
				return 0, err
			}
			if out == Waiting {
				// Local validation failed or the step re-prompted: no
				// transition, no token change.
				return Waiting, nil
			}
			nextIdx = curIdx + 1
		}
	}

	for {
		if nextIdx >= len(f.entries) {
			items, err := f.resolveLoop(ctx, c)
			if err != nil {
				return 0, err
			}
			if loopIdx >= len(items)-1 {
				return Finished, nil
			}
			loopIdx++
			nextIdx = 0
		}

		next := f.entries[nextIdx]
		frames := append(path[:depth:depth], Frame{Flow: f.id, Loop: loopIdx, Step: next.name})
		c.SetState(f.scope, EncodeToken(frames))

		if f.loop != nil {
			items, err := f.resolveLoop(ctx, c)
			if err != nil {
				return 0, err
			}
			if loopIdx < len(items) {
				c.Substitutions[f.loopVar] = items[loopIdx]
			}
		}

		if next.sub != nil {
			out, err := next.sub.Run(ctx, c, frames)
			if err != nil {
				return 0, err
			}
			if out == Waiting {
				return Waiting, nil
			}
			// An all-non-blocking sub-flow can finish within this dispatch.
			nextIdx++
			continue
		}

		out, err := next.step.Run(ctx, c)
		if err != nil {
			return 0, err
		}
		if out == Waiting {
			return Waiting, nil
		}
		// Non-blocking: the step completed inside Run, keep cascading. The
		// strict index advance bounds this loop.
		nextIdx++
	}
}

// returnTarget searches backward for the step a go-back or reload command
// lands on: the nearest blocking leaf step before the current one (reload
// includes the current position). The search never crosses a loop-iteration
// or nesting boundary.
func (f *Flow) returnTarget(curIdx int, includeCurrent bool) (int, error) {
	start := curIdx - 1
	if includeCurrent {
		start = curIdx
	}
	for i := start; i >= 0; i-- {
		e := f.entries[i]
		if e.sub == nil && !isNonBlocking(e.step) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("flow %q: %w", f.id, ErrNoStepToReturnTo)
}

func (f *Flow) mergeSubstitutions(c *Connector) {
	if len(f.substitutions) == 0 {
		return
	}
	if c.Substitutions == nil {
		c.Substitutions = map[string]any{}
	}
	// Connector bindings win over flow defaults.
	for k, v := range f.substitutions {
		if _, ok := c.Substitutions[k]; !ok {
			c.Substitutions[k] = v
		}
	}
}

func (f *Flow) resolveLoop(ctx context.Context, c *Connector) ([]any, error) {
	if f.loop == nil {
		return nil, nil
	}
	items, err := f.loop.Resolve(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("resolve loop source for flow %q: %w", f.id, err)
	}
	return items, nil
}
