package steps_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/steps"
)

type captureSender struct {
	channels []string
	texts    []string
}

func (s *captureSender) Send(_ context.Context, channelID, text string) error {
	s.channels = append(s.channels, channelID)
	s.texts = append(s.texts, text)
	return nil
}

func newConn(text string) *flow.Connector {
	return flow.NewConnector(flow.Event{
		Kind:      flow.KindMessage,
		UserID:    "u1",
		ChannelID: "c1",
		Private:   true,
		Text:      text,
	})
}

func TestMessageStep_RunPromptsAndWaits(t *testing.T) {
	sender := &captureSender{}
	step := &steps.MessageStep{Prompt: "What is your name?", Sender: sender}

	out, err := step.Run(context.Background(), newConn(""))
	require.NoError(t, err)
	assert.Equal(t, flow.Waiting, out)
	assert.Equal(t, []string{"What is your name?"}, sender.texts)
	assert.Equal(t, []string{"c1"}, sender.channels)
}

func TestMessageStep_NoWaitCompletesInRun(t *testing.T) {
	sender := &captureSender{}
	step := &steps.MessageStep{Prompt: "Heads up!", Response: "Moving on.", NoWait: true, Sender: sender}

	out, err := step.Run(context.Background(), newConn(""))
	require.NoError(t, err)
	assert.Equal(t, flow.Done, out)
	assert.Equal(t, []string{"Heads up!", "Moving on."}, sender.texts)
}

func TestMessageStep_ValidationRePrompts(t *testing.T) {
	sender := &captureSender{}
	step := &steps.MessageStep{
		Prompt: "How old are you?",
		SaveTo: "age",
		Validate: func(text string) error {
			if text != "30" {
				return errors.New("Please answer with a number.")
			}
			return nil
		},
		Sender: sender,
	}

	c := newConn("not a number")
	out, err := step.ProcessResponse(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, flow.Waiting, out)
	assert.Equal(t, []string{"Please answer with a number."}, sender.texts)
	assert.NotContains(t, c.UserData, "age")

	c = newConn("30")
	out, err = step.ProcessResponse(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, flow.Done, out)
	assert.Equal(t, "30", c.UserData["age"])
}

func TestMessageStep_ResponseIsRendered(t *testing.T) {
	sender := &captureSender{}
	step := &steps.MessageStep{Response: "Thanks, ${name}!", SaveTo: "name", Sender: sender}

	c := newConn("Alice")
	out, err := step.ProcessResponse(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, flow.Done, out)
	assert.Equal(t, []string{"Thanks, Alice!"}, sender.texts)
}

func TestMessageStep_ToOverridesChannel(t *testing.T) {
	sender := &captureSender{}
	step := &steps.MessageStep{Prompt: "hi", To: "audit-log", Sender: sender}

	_, err := step.Run(context.Background(), newConn(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"audit-log"}, sender.channels)
}

func TestRender(t *testing.T) {
	ctx := context.Background()

	c := newConn("")
	c.UserData["name"] = "Alice"
	c.Substitutions["brand"] = "Arbor"

	t.Run("no placeholders", func(t *testing.T) {
		out, err := steps.Render(ctx, c, "plain text", nil)
		require.NoError(t, err)
		assert.Equal(t, "plain text", out)
	})

	t.Run("lookup order local over connector over data", func(t *testing.T) {
		out, err := steps.Render(ctx, c, "${name} likes ${brand}", map[string]any{"name": "Bob"})
		require.NoError(t, err)
		assert.Equal(t, "Bob likes Arbor", out)
	})

	t.Run("user data fallback", func(t *testing.T) {
		out, err := steps.Render(ctx, c, "hello ${name}", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello Alice", out)
	})

	t.Run("unknown placeholder left intact", func(t *testing.T) {
		out, err := steps.Render(ctx, c, "hello ${missing}", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello ${missing}", out)
	})

	t.Run("unterminated placeholder passes through", func(t *testing.T) {
		out, err := steps.Render(ctx, c, "hello ${name", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello ${name", out)
	})

	t.Run("dynamic substitution resolved per dispatch", func(t *testing.T) {
		local := map[string]any{
			"count": flow.SubstitutionFunc(func(context.Context, *flow.Connector) (any, error) {
				return 42, nil
			}),
		}
		out, err := steps.Render(ctx, c, "you have ${count} items", local)
		require.NoError(t, err)
		assert.Equal(t, "you have 42 items", out)
	})

	t.Run("substitution errors abort", func(t *testing.T) {
		local := map[string]any{
			"bad": flow.SubstitutionFunc(func(context.Context, *flow.Connector) (any, error) {
				return nil, assert.AnError
			}),
		}
		_, err := steps.Render(ctx, c, "${bad}", local)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
