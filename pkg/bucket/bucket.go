// Package bucket gives steps typed access to the untyped per-subject data
// map. An Element names one key and decodes whatever the store round-tripped
// (maps after JSON persistence, plain values in memory) into the caller's
// type.
package bucket

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/arbor/pkg/flow"
)

// Element is a typed handle on one key of a scope's data map.
type Element[T any] struct {
	Key   string
	Scope flow.Scope
}

// New creates a user-scoped element.
func New[T any](key string) Element[T] {
	return Element[T]{Key: key, Scope: flow.ScopeUser}
}

// InScope creates an element bound to an explicit scope.
func InScope[T any](key string, scope flow.Scope) Element[T] {
	return Element[T]{Key: key, Scope: scope}
}

// Get reads and decodes the element. The second return is false when the key
// is absent.
func (e Element[T]) Get(c *flow.Connector) (T, bool, error) {
	var out T
	raw, ok := c.DataFor(e.Scope)[e.Key]
	if !ok {
		return out, false, nil
	}
	if typed, ok := raw.(T); ok {
		return typed, true, nil
	}

	// Values that crossed a JSON store come back as generic maps and
	// numbers; decode them leniently into the declared type.
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, false, err
	}
	if err := dec.Decode(raw); err != nil {
		return out, false, fmt.Errorf("decode data element %q: %w", e.Key, err)
	}
	return out, true, nil
}

// Set stores the value under the element's key.
func (e Element[T]) Set(c *flow.Connector, value T) {
	c.DataFor(e.Scope)[e.Key] = value
}

// Delete removes the element's key.
func (e Element[T]) Delete(c *flow.Connector) {
	delete(c.DataFor(e.Scope), e.Key)
}
