package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/steps"
)

// sampleFlows builds the demo onboarding flow the repl command runs.
func sampleFlows(sender ports.Sender) []*flow.Flow {
	onboarding := flow.New("onboarding",
		flow.WithTriggers(flow.Command("start")),
		flow.WithReset("name", "age"),
	).
		Step("ask_name", &steps.MessageStep{
			Prompt: "Hi! What is your name?",
			SaveTo: "name",
			Sender: sender,
		}).
		Step("ask_age", &steps.MessageStep{
			Prompt: "Nice to meet you, ${name}. How old are you?",
			Validate: func(text string) error {
				if _, err := strconv.Atoi(text); err != nil {
					return fmt.Errorf("please answer with a number")
				}
				return nil
			},
			SaveTo: "age",
			Sender: sender,
		}).
		Step("confirm", &steps.MessageStep{
			Prompt: "All set, ${name}!",
			NoWait: true,
			Sender: sender,
		}).
		MustBuild()

	return []*flow.Flow{onboarding}
}

// summaryCallback announces the collected answers when a session completes.
func summaryCallback(sender ports.Sender) func(ctx context.Context, c *flow.Connector) error {
	return func(ctx context.Context, c *flow.Connector) error {
		return sender.Send(ctx, c.ChannelID,
			fmt.Sprintf("Finished: name=%v age=%v", c.UserData["name"], c.UserData["age"]))
	}
}
