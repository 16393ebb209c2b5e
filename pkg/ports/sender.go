package ports

import "context"

// Sender delivers outbound text to a channel. It is the transport boundary:
// steps emit prompts through it and never touch wire protocols themselves.
type Sender interface {
	Send(ctx context.Context, channelID, text string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, channelID, text string) error

func (f SenderFunc) Send(ctx context.Context, channelID, text string) error {
	return f(ctx, channelID, text)
}
