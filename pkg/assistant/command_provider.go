package assistant

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/core/command"
)

// CommandProvider generates replies by piping the prompt to the llm
// command-line tool. It covers any model the llm tool knows about that has
// no dedicated API provider here.
type CommandProvider struct {
	model      string
	cmdBuilder *command.SafeBuilder
	logger     Logger
}

// NewCommandProvider creates a provider backed by the llm CLI.
func NewCommandProvider(model string, logger Logger) *CommandProvider {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &CommandProvider{
		model:      model,
		cmdBuilder: command.NewSafeBuilder(),
		logger:     logger,
	}
}

func (p *CommandProvider) Name() string {
	return p.model
}

func (p *CommandProvider) Generate(ctx context.Context, history []ConversationMessage) (*Reply, error) {
	prompt, err := buildPrompt(history)
	if err != nil {
		return nil, err
	}

	args := []string{}
	if p.model != "" {
		args = append(args, "-m", p.model)
	}

	cmd, err := p.cmdBuilder.Build(ctx, "llm", args...)
	if err != nil {
		return nil, fmt.Errorf("building llm command: %w", err)
	}

	execCmd := cmd.Exec()
	execCmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	p.logger.Debug("Running llm command", "model", p.model, "prompt_chars", len(prompt))
	if err := execCmd.Run(); err != nil {
		return nil, fmt.Errorf("llm command failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	return ParseReply(stdout.String()), nil
}
