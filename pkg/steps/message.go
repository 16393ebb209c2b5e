// Package steps holds the reusable step implementations flows are assembled
// from: text prompts with validation and templating, and callback steps.
package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/ports"
)

// MessageStep prompts the subject and consumes their reply. Placeholders of
// the form ${name} in Prompt/Response are substituted from the subject's data
// map, the connector's bindings, and step-local bindings (step-local wins).
type MessageStep struct {
	// Prompt is sent when the step starts.
	Prompt string

	// Response, when set, is sent after a reply is accepted.
	Response string

	// Validate inspects the reply; a non-nil error keeps the step waiting
	// and its message is sent back as the re-prompt.
	Validate func(text string) error

	// SaveTo stores the accepted reply under this key. Answers always land in
	// the user-scope data map, even when the owning flow is channel-scoped:
	// a reply belongs to the subject who typed it.
	SaveTo string

	// Substitutions are step-local template bindings.
	Substitutions map[string]any

	// To overrides the destination channel (default: the event's channel).
	To string

	// NoWait makes the step non-blocking: Run completes immediately and the
	// driver advances within the same dispatch.
	NoWait bool

	Sender ports.Sender
}

func (s *MessageStep) NonBlocking() bool { return s.NoWait }

func (s *MessageStep) Run(ctx context.Context, c *flow.Connector) (flow.Outcome, error) {
	if err := s.send(ctx, c, s.Prompt); err != nil {
		return 0, err
	}
	if s.NoWait {
		if err := s.send(ctx, c, s.Response); err != nil {
			return 0, err
		}
		return flow.Done, nil
	}
	return flow.Waiting, nil
}

func (s *MessageStep) ProcessResponse(ctx context.Context, c *flow.Connector) (flow.Outcome, error) {
	if s.Validate != nil {
		if err := s.Validate(c.Text); err != nil {
			if sendErr := s.send(ctx, c, err.Error()); sendErr != nil {
				return 0, sendErr
			}
			return flow.Waiting, nil
		}
	}
	if s.SaveTo != "" {
		c.DataFor(flow.ScopeUser)[s.SaveTo] = c.Text
	}
	if err := s.send(ctx, c, s.Response); err != nil {
		return 0, err
	}
	return flow.Done, nil
}

func (s *MessageStep) send(ctx context.Context, c *flow.Connector, text string) error {
	if text == "" {
		return nil
	}
	rendered, err := Render(ctx, c, text, s.Substitutions)
	if err != nil {
		return err
	}
	channel := s.To
	if channel == "" {
		channel = c.ChannelID
	}
	if err := s.Sender.Send(ctx, channel, rendered); err != nil {
		return fmt.Errorf("send to channel %s: %w", channel, err)
	}
	return nil
}

// Render expands ${name} placeholders in text. Bindings are looked up in
// local, then the connector's substitution table, then the user data map.
// Values implementing flow.Substitution are resolved per dispatch. Unknown
// placeholders are left untouched.
func Render(ctx context.Context, c *flow.Connector, text string, local map[string]any) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}

	lookup := func(name string) (any, bool) {
		if v, ok := local[name]; ok {
			return v, true
		}
		if v, ok := c.Substitutions[name]; ok {
			return v, true
		}
		if v, ok := c.UserData[name]; ok {
			return v, true
		}
		return nil, false
	}

	var out strings.Builder
	rest := text
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		end += start
		name := rest[start+2 : end]

		out.WriteString(rest[:start])
		if v, ok := lookup(name); ok {
			if sub, isSub := v.(flow.Substitution); isSub {
				resolved, err := sub.Resolve(ctx, c)
				if err != nil {
					return "", fmt.Errorf("resolve substitution %q: %w", name, err)
				}
				v = resolved
			}
			fmt.Fprintf(&out, "%v", v)
		} else {
			out.WriteString(rest[start : end+1])
		}
		rest = rest[end+1:]
	}
}
