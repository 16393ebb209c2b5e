package steps

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/flow"
)

// FuncStep runs an arbitrary callback as a step. With no OnResponse handler
// it completes on the first reply; with NoWait it completes inside Run.
type FuncStep struct {
	// Fn is invoked when the step starts.
	Fn func(ctx context.Context, c *flow.Connector) error

	// OnResponse, when set, consumes the reply and decides the outcome.
	OnResponse func(ctx context.Context, c *flow.Connector) (flow.Outcome, error)

	// NoWait makes the step non-blocking.
	NoWait bool

	// SkipOnFailure turns Fn errors into a logged skip instead of aborting
	// the dispatch.
	SkipOnFailure bool

	Logger *slog.Logger
}

func (s *FuncStep) NonBlocking() bool { return s.NoWait }

func (s *FuncStep) Run(ctx context.Context, c *flow.Connector) (flow.Outcome, error) {
	if s.Fn != nil {
		if err := s.Fn(ctx, c); err != nil {
			if !s.SkipOnFailure {
				return 0, err
			}
			s.logger().Warn("step callback failed, skipping", "err", err)
			return flow.Done, nil
		}
	}
	if s.NoWait {
		return flow.Done, nil
	}
	return flow.Waiting, nil
}

func (s *FuncStep) ProcessResponse(ctx context.Context, c *flow.Connector) (flow.Outcome, error) {
	if s.OnResponse != nil {
		return s.OnResponse(ctx, c)
	}
	return flow.Done, nil
}

func (s *FuncStep) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.NewNop()
}
