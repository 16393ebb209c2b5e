package arbor_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/steps"
)

// ExampleNew walks a two-step onboarding conversation end to end: a command
// starts the flow, each inbound message advances it one step, and the finish
// callback sees the collected answers.
func ExampleNew() {
	// 1. Outbound messages go through a Sender; here they print to stdout.
	sender := ports.SenderFunc(func(_ context.Context, _ string, text string) error {
		fmt.Println(text)
		return nil
	})

	// 2. Flows are built once at startup from named steps.
	onboarding := arbor.NewFlow("onboarding",
		flow.WithTriggers(flow.Command("start")),
	).
		Step("ask_name", &steps.MessageStep{
			Prompt: "What is your name?",
			SaveTo: "name",
			Sender: sender,
		}).
		Step("confirm", &steps.MessageStep{
			Prompt: "Welcome, ${name}!",
			NoWait: true,
			Sender: sender,
		}).
		MustBuild()

	// 3. The manager routes events and persists positions in the store.
	mgr, err := arbor.New(memory.NewStore(), []*flow.Flow{onboarding})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	say := func(text string) {
		ev := arbor.Event{
			Kind:      flow.KindMessage,
			UserID:    "u1",
			ChannelID: "dm",
			Private:   true,
			Text:      text,
		}
		if err := mgr.Dispatch(ctx, ev); err != nil {
			log.Fatal(err)
		}
	}

	say("!start")
	say("Alice")

	// Output:
	// What is your name?
	// Welcome, Alice!
}
