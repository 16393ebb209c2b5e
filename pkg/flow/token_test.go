package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/flow"
)

func TestToken_RoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		frames []flow.Frame
	}{
		{"single frame", []flow.Frame{{Flow: "onboarding", Loop: 0, Step: "ask_name"}}},
		{"loop iteration", []flow.Frame{{Flow: "survey", Loop: 7, Step: "question"}}},
		{"nested two deep", []flow.Frame{
			{Flow: "parent", Loop: 1, Step: "profile"},
			{Flow: "profile", Loop: 0, Step: "ask_age"},
		}},
		{"nested three deep", []flow.Frame{
			{Flow: "a", Loop: 2, Step: "b_entry"},
			{Flow: "b", Loop: 0, Step: "c_entry"},
			{Flow: "c", Loop: 4, Step: "leaf"},
		}},
		{"hostile names", []flow.Frame{
			{Flow: `fl:ow"with{weird}`, Loop: 0, Step: "st:ep,na\"me"},
			{Flow: "ünïcode", Loop: 9, Step: "日本語"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := flow.EncodeToken(tc.frames)
			decoded, err := flow.DecodeToken(token)
			require.NoError(t, err)
			assert.Equal(t, tc.frames, decoded)
		})
	}
}

func TestDecodeToken_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"not json", "onboarding:0:ask_name"},
		{"wrong version", `{"v":2,"frames":[{"flow":"f","loop":0,"step":"s"}]}`},
		{"no frames", `{"v":1,"frames":[]}`},
		{"frames missing", `{"v":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := flow.DecodeToken(tc.token)
			assert.Error(t, err)
		})
	}
}
