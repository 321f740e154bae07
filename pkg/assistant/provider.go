package assistant

import (
	"context"
	"strings"
)

// Reply is the parsed result of one provider round trip: free text plus zero
// or more structured action proposals.
type Reply struct {
	Text    string
	Actions []ActionProposal
}

// Provider is an interchangeable reasoning backend. Generate receives the
// full conversation history as context and returns the next assistant reply.
// Implementations must respect ctx cancellation; the router additionally
// enforces a bounded timeout per attempt.
type Provider interface {
	Generate(ctx context.Context, history []ConversationMessage) (*Reply, error)
	Name() string
}

// NewProvider selects a provider implementation for a model identifier.
// Models prefixed "claude" go to the Anthropic API, "gemini" to the Gemini
// API, and anything else is handed to the llm command-line tool.
func NewProvider(model string, logger Logger) Provider {
	switch {
	case strings.HasPrefix(model, "claude"):
		return NewAnthropicProvider(model, logger)
	case strings.HasPrefix(model, "gemini"):
		return NewGeminiProvider(model, logger)
	default:
		return NewCommandProvider(model, logger)
	}
}
