package models

import "context"

// GenerateRequest is one fully-assembled chat completion request: a system
// instruction block, a bounded message window, and generation parameters.
type GenerateRequest struct {
	System      string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// ChatProvider is the interface every conversational backend implements.
// Never call specific providers directly — always inject this interface.
type ChatProvider interface {
	// Generate produces a single reply for the assembled request.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	// Name returns the provider tier ("local", "cloud", "offline").
	Name() string
}
