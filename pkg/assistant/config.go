package assistant

import "time"

// DefaultAttemptTimeout bounds a single provider attempt when the config does
// not specify one. Worst-case Chat latency is twice this value (primary plus
// fallback).
const DefaultAttemptTimeout = 2 * time.Minute

// Config holds construction options for a ChiefOfStaff session.
type Config struct {
	// PrimaryProvider identifies the reasoning backend tried first, as a
	// model identifier (e.g. "claude-sonnet-4-5", "gemini-2.5-pro").
	PrimaryProvider string

	// FallbackProvider identifies the backend tried when the primary fails
	// or times out. Empty disables fallback.
	FallbackProvider string

	// EnableAutonomousActions allows low-risk actions to execute without
	// approval. Disabled by default: every action queues as pending.
	EnableAutonomousActions bool

	// RequireApprovalForHighRisk forces high-risk actions through the
	// approval queue even when autonomous actions are enabled.
	// nil means true.
	RequireApprovalForHighRisk *bool

	// AttemptTimeout bounds each provider attempt. Zero means
	// DefaultAttemptTimeout.
	AttemptTimeout time.Duration
}

// requireApprovalForHighRisk resolves the tri-state field to its default.
func (c Config) requireApprovalForHighRisk() bool {
	if c.RequireApprovalForHighRisk == nil {
		return true
	}
	return *c.RequireApprovalForHighRisk
}

// autoExecute reports whether a proposal with the given risk classification
// may run without human approval. This is the whole admission policy: it is
// pure, so it can be tested without any provider in the loop.
func (c Config) autoExecute(risk RiskLevel) bool {
	if !c.EnableAutonomousActions {
		return false
	}
	if c.requireApprovalForHighRisk() && risk == RiskHigh {
		return false
	}
	return true
}

func (c Config) attemptTimeout() time.Duration {
	if c.AttemptTimeout <= 0 {
		return DefaultAttemptTimeout
	}
	return c.AttemptTimeout
}
