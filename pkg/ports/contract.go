package ports

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/flow"
)

// RunStoreContract exercises the Store interface semantics every adapter must
// honor. Adapter test files call it with a fresh store.
func RunStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	userKey := UserKey("user-1")
	chanKey := ChannelKey("chan-1")

	t.Run("absent state reads as empty", func(t *testing.T) {
		token, err := store.GetState(ctx, userKey)
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if token != "" {
			t.Fatalf("expected empty token, got %q", token)
		}
	})

	t.Run("state round trip", func(t *testing.T) {
		if err := store.SetState(ctx, userKey, "tok-a"); err != nil {
			t.Fatalf("SetState: %v", err)
		}
		token, err := store.GetState(ctx, userKey)
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if token != "tok-a" {
			t.Fatalf("expected tok-a, got %q", token)
		}
	})

	t.Run("scopes are independent", func(t *testing.T) {
		if err := store.SetState(ctx, chanKey, "tok-chan"); err != nil {
			t.Fatalf("SetState: %v", err)
		}
		sameIDUser, err := store.GetState(ctx, Key{Scope: flow.ScopeUser, ID: "chan-1"})
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if sameIDUser != "" {
			t.Fatalf("user-scope read leaked channel-scope token %q", sameIDUser)
		}
	})

	t.Run("data round trip and isolation from state", func(t *testing.T) {
		if err := store.SetData(ctx, userKey, flow.Data{"name": "Alice", "age": "30"}); err != nil {
			t.Fatalf("SetData: %v", err)
		}
		if err := store.DeleteState(ctx, userKey); err != nil {
			t.Fatalf("DeleteState: %v", err)
		}
		data, err := store.GetData(ctx, userKey)
		if err != nil {
			t.Fatalf("GetData: %v", err)
		}
		if data["name"] != "Alice" {
			t.Fatalf("data did not survive state deletion: %v", data)
		}
	})

	t.Run("delete data", func(t *testing.T) {
		if err := store.DeleteData(ctx, userKey); err != nil {
			t.Fatalf("DeleteData: %v", err)
		}
		data, err := store.GetData(ctx, userKey)
		if err != nil {
			t.Fatalf("GetData: %v", err)
		}
		if len(data) != 0 {
			t.Fatalf("expected empty data after delete, got %v", data)
		}
	})
}
