package ports

import (
	"context"
	"sync"
)

// ChannelSink is an in-memory Sender recording outbound messages per channel.
// Test double for flows that emit prompts.
type ChannelSink struct {
	mu        sync.Mutex
	order     []string
	byChannel map[string][]string
}

// NewChannelSink creates an empty sink.
func NewChannelSink() *ChannelSink {
	return &ChannelSink{byChannel: make(map[string][]string)}
}

func (s *ChannelSink) Send(_ context.Context, channelID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, text)
	s.byChannel[channelID] = append(s.byChannel[channelID], text)
	return nil
}

// Messages returns every message sent to the channel, in order.
func (s *ChannelSink) Messages(channelID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.byChannel[channelID]...)
}

// All returns every message sent, in send order, across channels.
func (s *ChannelSink) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
