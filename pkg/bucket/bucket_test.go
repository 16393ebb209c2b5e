package bucket_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/bucket"
	"github.com/aretw0/arbor/pkg/flow"
)

type profile struct {
	Name string `mapstructure:"name"`
	Age  int    `mapstructure:"age"`
}

func newConn() *flow.Connector {
	return flow.NewConnector(flow.Event{Kind: flow.KindMessage, UserID: "u1", Private: true})
}

func TestElement_SetGetDelete(t *testing.T) {
	c := newConn()
	name := bucket.New[string]("name")

	_, ok, err := name.Get(c)
	require.NoError(t, err)
	assert.False(t, ok)

	name.Set(c, "Alice")
	got, ok, err := name.Get(c)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Alice", got)

	name.Delete(c)
	_, ok, err = name.Get(c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestElement_DecodesStoreRoundTrippedValues(t *testing.T) {
	c := newConn()
	elem := bucket.New[profile]("profile")

	// A JSON-backed store hands structured values back as generic maps.
	c.UserData["profile"] = map[string]any{"name": "Alice", "age": float64(30)}

	got, ok, err := elem.Get(c)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, profile{Name: "Alice", Age: 30}, got)
}

func TestElement_WeaklyTypedDecode(t *testing.T) {
	c := newConn()
	age := bucket.New[int]("age")

	// Text answers saved by a message step decode into numeric elements.
	c.UserData["age"] = "30"

	got, ok, err := age.Get(c)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30, got)
}

func TestElement_ScopeSelectsDataMap(t *testing.T) {
	c := newConn()
	topic := bucket.InScope[string]("topic", flow.ScopeChannel)

	topic.Set(c, "planning")
	assert.Equal(t, "planning", c.ChannelData["topic"])
	assert.NotContains(t, c.UserData, "topic")
}

func TestElement_UndecodableValueErrors(t *testing.T) {
	c := newConn()
	age := bucket.New[int]("age")
	c.UserData["age"] = "not a number"

	_, _, err := age.Get(c)
	assert.Error(t, err)
}
