package arbor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/steps"
)

func TestFacade_EndToEnd(t *testing.T) {
	ctx := context.Background()
	sink := ports.NewChannelSink()

	greet := arbor.NewFlow("greet",
		flow.WithTriggers(flow.Command("hello")),
	).
		Step("ask", &steps.MessageStep{Prompt: "Who goes there?", SaveTo: "name", Sender: sink}).
		Step("reply", &steps.MessageStep{Prompt: "Welcome, ${name}!", NoWait: true, Sender: sink}).
		MustBuild()

	mgr, err := arbor.New(memory.NewStore(), []*flow.Flow{greet})
	require.NoError(t, err)

	ev := func(text string) arbor.Event {
		return arbor.Event{Kind: flow.KindMessage, UserID: "u1", ChannelID: "dm", Private: true, Text: text}
	}

	require.NoError(t, mgr.Dispatch(ctx, ev("!hello")))
	require.NoError(t, mgr.Dispatch(ctx, ev("Alice")))

	assert.Equal(t, []string{"Who goes there?", "Welcome, Alice!"}, sink.Messages("dm"))
	assert.Equal(t, sink.Messages("dm"), sink.All())
}
