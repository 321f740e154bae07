package assistant

import (
	"context"
	"fmt"

	geminiconfig "github.com/grovetools/grove-gemini/pkg/config"
	"github.com/grovetools/grove-gemini/pkg/gemini"
)

// GeminiProvider generates replies through the Gemini API.
type GeminiProvider struct {
	model  string
	runner *gemini.RequestRunner
	logger Logger
}

// NewGeminiProvider creates a provider for a Gemini model.
func NewGeminiProvider(model string, logger Logger) *GeminiProvider {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &GeminiProvider{
		model:  model,
		runner: gemini.NewRequestRunner(),
		logger: logger,
	}
}

func (p *GeminiProvider) Name() string {
	return p.model
}

func (p *GeminiProvider) Generate(ctx context.Context, history []ConversationMessage) (*Reply, error) {
	// A missing key is not fatal here; the runner produces a consistent
	// error for it.
	apiKey, err := geminiconfig.ResolveAPIKey()
	if err != nil {
		apiKey = ""
	}

	prompt, err := buildPrompt(history)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Calling Gemini API", "model", p.model, "history_len", len(history))
	response, err := p.runner.Run(ctx, gemini.RequestOptions{
		Model:            p.model,
		Prompt:           prompt,
		SkipConfirmation: true,
		APIKey:           apiKey,
		Caller:           "chief-chat",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini completion: %w", err)
	}

	return ParseReply(response), nil
}
