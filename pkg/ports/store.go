package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/flow"
)

// Key addresses one independent state machine instance: a scope plus the
// subject identity within it. User-scope and channel-scope entries for the
// same identity never interact.
type Key struct {
	Scope flow.Scope
	ID    string
}

func (k Key) String() string {
	return string(k.Scope) + ":" + k.ID
}

// UserKey builds the user-scope key for a subject.
func UserKey(id string) Key { return Key{Scope: flow.ScopeUser, ID: id} }

// ChannelKey builds the channel-scope key for a channel.
func ChannelKey(id string) Key { return Key{Scope: flow.ScopeChannel, ID: id} }

// Store persists session state tokens and data maps per key. State and data
// have independent lifecycles: deleting one never touches the other.
//
// GetState returns "" (no error) when the key has no active session;
// GetData returns an empty map when the key has no data.
type Store interface {
	GetState(ctx context.Context, key Key) (string, error)
	SetState(ctx context.Context, key Key, token string) error
	DeleteState(ctx context.Context, key Key) error

	GetData(ctx context.Context, key Key) (flow.Data, error)
	SetData(ctx context.Context, key Key, data flow.Data) error
	DeleteData(ctx context.Context, key Key) error
}
