package assistant

import (
	"context"
	"fmt"

	"github.com/grovetools/grove-anthropic/pkg/anthropic"
	anthropicconfig "github.com/grovetools/grove-anthropic/pkg/config"
	anthropicmodels "github.com/grovetools/grove-anthropic/pkg/models"
)

// AnthropicProvider generates replies through the Anthropic API.
type AnthropicProvider struct {
	model  string
	runner *anthropic.RequestRunner
	logger Logger
}

// NewAnthropicProvider creates a provider for a Claude model. Aliases are
// expanded to full API IDs; an empty model uses the Anthropic default.
func NewAnthropicProvider(model string, logger Logger) *AnthropicProvider {
	if model == "" {
		model = anthropicmodels.DefaultModel
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &AnthropicProvider{
		model:  anthropicmodels.ResolveAlias(model),
		runner: anthropic.NewRequestRunner(),
		logger: logger,
	}
}

func (p *AnthropicProvider) Name() string {
	return p.model
}

func (p *AnthropicProvider) Generate(ctx context.Context, history []ConversationMessage) (*Reply, error) {
	apiKey, err := anthropicconfig.ResolveAPIKey()
	if err != nil {
		return nil, fmt.Errorf("resolving Anthropic API key: %w", err)
	}

	prompt, err := buildPrompt(history)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Calling Anthropic API", "model", p.model, "history_len", len(history))
	response, err := p.runner.Run(ctx, anthropic.RequestOptions{
		Model:     p.model,
		Prompt:    prompt,
		APIKey:    apiKey,
		MaxTokens: 8192,
		Caller:    "chief-chat",
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic completion: %w", err)
	}

	return ParseReply(response), nil
}
