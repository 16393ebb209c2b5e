package flow

import (
	"encoding/json"
	"fmt"
)

// Frame is one level of the resumable position: which flow, which loop
// iteration, which step. A persisted token is a stack of frames, outermost
// first.
type Frame struct {
	Flow string `json:"flow"`
	Loop int    `json:"loop"`
	Step string `json:"step"`
}

// tokenVersion guards the wire shape of persisted tokens. Decoding a token
// with a different version fails loudly instead of guessing.
const tokenVersion = 1

type tokenEnvelope struct {
	V      int     `json:"v"`
	Frames []Frame `json:"frames"`
}

// EncodeToken serializes a frame stack into a persistable token string.
func EncodeToken(frames []Frame) string {
	b, err := json.Marshal(tokenEnvelope{V: tokenVersion, Frames: frames})
	if err != nil {
		// Frames hold only strings and ints; Marshal cannot fail on them.
		panic(fmt.Sprintf("flow: encode state token: %v", err))
	}
	return string(b)
}

// DecodeToken parses a persisted token back into its frame stack.
// It is the exact inverse of EncodeToken for any valid frame stack.
func DecodeToken(token string) ([]Frame, error) {
	var env tokenEnvelope
	if err := json.Unmarshal([]byte(token), &env); err != nil {
		return nil, fmt.Errorf("malformed state token: %w", err)
	}
	if env.V != tokenVersion {
		return nil, fmt.Errorf("unsupported state token version %d", env.V)
	}
	if len(env.Frames) == 0 {
		return nil, fmt.Errorf("state token has no frames")
	}
	return env.Frames, nil
}
