package flow

// Scope determines which subject identity owns a session's persisted state.
type Scope string

const (
	// ScopeUser keys the session by the user identity. Used for private
	// (direct) conversations.
	ScopeUser Scope = "user"

	// ScopeChannel keys the session by the channel identity. Used for
	// shared, non-private contexts.
	ScopeChannel Scope = "channel"
)
