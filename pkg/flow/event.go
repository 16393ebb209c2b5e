package flow

// Kind is the category of an inbound event.
type Kind string

const (
	KindMessage      Kind = "message"
	KindButtonClick  Kind = "button_click"
	KindMemberJoin   Kind = "member_join"
	KindMemberUpdate Kind = "member_update"
)

// Event is one inbound occurrence produced by the transport collaborator.
// The engine never inspects Payload; it is carried through for steps that
// need the originating transport object.
type Event struct {
	Kind      Kind   `json:"kind"`
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id,omitempty"`

	// Text is the message body for KindMessage events (or the control
	// identifier for KindButtonClick). Control tokens are matched against it.
	Text string `json:"text,omitempty"`

	// Private marks a direct conversation; private events dispatch under
	// ScopeUser, everything else under ScopeChannel.
	Private bool `json:"private,omitempty"`

	Payload any `json:"-"`
}

// Scope returns the dispatch scope for the event.
func (e Event) Scope() Scope {
	if e.Private {
		return ScopeUser
	}
	return ScopeChannel
}
