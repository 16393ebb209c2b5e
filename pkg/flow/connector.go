package flow

import "strings"

// Data is the per-subject key/value store steps persist answers into. Its
// lifecycle is independent from the state token: clearing one does not clear
// the other unless explicitly requested.
type Data map[string]any

// Controls are the reserved literal commands recognized in message events to
// request navigation. They must not collide with the command prefix.
type Controls struct {
	GoBack string
	Reload string
}

// DefaultControls mirrors the conventional underscore-prefixed tokens so they
// cannot be confused with registered commands.
var DefaultControls = Controls{GoBack: "_go_back", Reload: "_reload"}

// Connector is the transient per-dispatch context threaded through the whole
// call chain. The manager builds one per event, flows and steps mutate it,
// and the manager derives what to persist from its final field values. It is
// never persisted directly and never shared between dispatches.
type Connector struct {
	Event     Kind
	UserID    string
	ChannelID string
	Private   bool

	// Text is the message body. Steps and the driver may consume it (the
	// driver blanks it after recognizing a control token so it is not
	// reprocessed downstream).
	Text string

	// Payload is the opaque transport reference for the originating event.
	Payload any

	UserState    string
	ChannelState string
	UserData     Data
	ChannelData  Data

	// Substitutions carries per-dispatch template bindings: flow-level
	// bindings plus the current loop element, merged as flows run.
	Substitutions map[string]any

	CommandPrefix string
	Controls      Controls
}

// NewConnector builds a fresh connector for one event.
func NewConnector(ev Event) *Connector {
	return &Connector{
		Event:         ev.Kind,
		UserID:        ev.UserID,
		ChannelID:     ev.ChannelID,
		Private:       ev.Private,
		Text:          ev.Text,
		Payload:       ev.Payload,
		UserData:      Data{},
		ChannelData:   Data{},
		Substitutions: map[string]any{},
		Controls:      DefaultControls,
	}
}

// State returns the persisted token for the given scope ("" when idle).
func (c *Connector) State(scope Scope) string {
	if scope == ScopeChannel {
		return c.ChannelState
	}
	return c.UserState
}

// SetState records the new token for the given scope on the connector. The
// manager persists it after the dispatch completes.
func (c *Connector) SetState(scope Scope, token string) {
	if scope == ScopeChannel {
		c.ChannelState = token
		return
	}
	c.UserState = token
}

// DataFor returns the data map for the given scope, allocating it if needed.
func (c *Connector) DataFor(scope Scope) Data {
	if scope == ScopeChannel {
		if c.ChannelData == nil {
			c.ChannelData = Data{}
		}
		return c.ChannelData
	}
	if c.UserData == nil {
		c.UserData = Data{}
	}
	return c.UserData
}

// IsCommand reports whether the event is a command-shaped message.
func (c *Connector) IsCommand() bool {
	return c.Event == KindMessage && c.CommandPrefix != "" &&
		strings.HasPrefix(c.Text, c.CommandPrefix)
}
