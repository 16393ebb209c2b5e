package flow

import "context"

// Outcome is the tagged result of running a step or flow. The driver inspects
// it to decide the next transition; it is never an error.
type Outcome int

const (
	// Waiting means the position is unchanged and the step expects the next
	// inbound event (initial prompt sent, or local validation failed).
	Waiting Outcome = iota

	// Done means the step completed and the driver should advance.
	Done

	// Finished means the whole flow ran out of steps and loop iterations.
	// From a nested flow it tells the parent to advance past it; from the
	// top-level flow it tells the manager to finalize the session.
	Finished
)

func (o Outcome) String() string {
	switch o {
	case Waiting:
		return "waiting"
	case Done:
		return "done"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Step is the atomic unit of interaction.
//
// Run starts the step (typically emitting a prompt through a transport
// collaborator). A non-blocking step must return Done from Run so the driver
// advances without waiting.
//
// ProcessResponse consumes the next inbound event addressed to the step and
// resolves to exactly one outcome: Waiting (re-prompt, no transition), Done
// (advance), or Finished (only meaningful from flows, not leaf steps).
type Step interface {
	Run(ctx context.Context, c *Connector) (Outcome, error)
	ProcessResponse(ctx context.Context, c *Connector) (Outcome, error)
}

// NonBlocker is implemented by steps that never wait for a response. The
// driver skips them when searching for a go-back/reload target, and they
// never end up as the persisted resumable position.
type NonBlocker interface {
	NonBlocking() bool
}

func isNonBlocking(s Step) bool {
	nb, ok := s.(NonBlocker)
	return ok && nb.NonBlocking()
}
