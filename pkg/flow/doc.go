// Package flow implements the conversational flow engine: ordered sequences
// of interaction steps (and nested sub-flows) driven by a state machine whose
// position survives restarts as a compact persisted token.
//
// A Flow is built once at startup from an explicit, validated list of named
// steps. Each inbound event advances exactly one flow by one or more steps:
// blocking steps wait for the next event, non-blocking steps cascade within
// the same dispatch. Position is encoded as a stack of frames (one per
// nesting level), so sub-flows and loop iterations resume exactly where they
// left off.
package flow
