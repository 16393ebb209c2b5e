// Package arbor is the high-level entry point for the library: it re-exports
// the pieces most applications wire together — flows, the manager, and the
// store/locker ports — so simple consumers need a single import.
//
// A minimal setup:
//
//	onboarding := arbor.NewFlow("onboarding",
//		flow.WithTriggers(flow.Command("start")),
//	).
//		Step("ask_name", &steps.MessageStep{Prompt: "Name?", SaveTo: "name", Sender: sender}).
//		MustBuild()
//
//	mgr, err := arbor.New(memory.NewStore(), []*flow.Flow{onboarding})
//	...
//	err = mgr.Dispatch(ctx, flow.Event{Kind: flow.KindMessage, UserID: "u1", Text: "!start", Private: true})
package arbor

import (
	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/manager"
	"github.com/aretw0/arbor/pkg/ports"
)

// Aliases for the types appearing in nearly every integration.
type (
	Event     = flow.Event
	Connector = flow.Connector
	Flow      = flow.Flow
	Manager   = manager.Manager
	Store     = ports.Store
)

// New builds a Manager over the store and ordered flow list.
func New(store ports.Store, flows []*flow.Flow, opts ...manager.Option) (*manager.Manager, error) {
	return manager.New(store, flows, opts...)
}

// NewFlow starts a flow builder.
func NewFlow(name string, opts ...flow.Option) *flow.Builder {
	return flow.New(name, opts...)
}
