package flow

import (
	"context"
	"strings"
)

// Trigger decides whether a fresh (non-continuing) event should start a flow.
type Trigger interface {
	Check(ctx context.Context, c *Connector, scope Scope) (bool, error)
}

// CommandTrigger fires on an exact command message, e.g. "!start" for
// Command("start") under the "!" prefix.
type CommandTrigger struct {
	Command string

	// Scopes the trigger may fire in. Defaults to user scope only.
	Scopes []Scope

	// Aliased additionally matches the command's initialism ("!start_over"
	// also fires on "!so").
	Aliased bool
}

// Command builds a user-scoped command trigger.
func Command(name string) *CommandTrigger {
	return &CommandTrigger{Command: name}
}

func (t *CommandTrigger) allowed(scope Scope) bool {
	scopes := t.Scopes
	if len(scopes) == 0 {
		scopes = []Scope{ScopeUser}
	}
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func (t *CommandTrigger) Check(_ context.Context, c *Connector, scope Scope) (bool, error) {
	if c.Event != KindMessage || !t.allowed(scope) {
		return false, nil
	}
	if c.Text == c.CommandPrefix+t.Command {
		return true, nil
	}
	if t.Aliased {
		var alias strings.Builder
		for _, part := range strings.Split(t.Command, "_") {
			if part != "" {
				alias.WriteByte(part[0])
			}
		}
		if alias.Len() > 0 && c.Text == c.CommandPrefix+alias.String() {
			return true, nil
		}
	}
	return false, nil
}

// EventTrigger fires on a specific event kind regardless of scope. Used for
// member lifecycle events that should start a flow on their own.
type EventTrigger struct {
	Kind Kind
}

// OnEvent builds a trigger for the given event kind.
func OnEvent(kind Kind) *EventTrigger {
	return &EventTrigger{Kind: kind}
}

func (t *EventTrigger) Check(_ context.Context, c *Connector, _ Scope) (bool, error) {
	return c.Event == t.Kind, nil
}

// TriggerFunc adapts a predicate function to the Trigger interface.
type TriggerFunc func(ctx context.Context, c *Connector, scope Scope) (bool, error)

func (f TriggerFunc) Check(ctx context.Context, c *Connector, scope Scope) (bool, error) {
	return f(ctx, c, scope)
}
