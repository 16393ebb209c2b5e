// Package ports declares the boundary interfaces the engine consumes:
// session persistence, per-key locking, and outbound message delivery.
// Adapters under pkg/adapters implement them; the engine never depends on a
// concrete backend.
package ports
