package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Router abstracts over interchangeable reasoning backends. It tries the
// primary provider once under a bounded timeout, then the fallback exactly
// once with the same input, and surfaces a single aggregated failure if both
// fail. It holds no conversation state.
type Router struct {
	primary        Provider
	fallback       Provider
	attemptTimeout time.Duration
	logger         Logger
}

// NewRouter creates a router. fallback may be nil to disable failover.
func NewRouter(primary, fallback Provider, attemptTimeout time.Duration, logger Logger) *Router {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Router{
		primary:        primary,
		fallback:       fallback,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// Generate drives one provider round trip for the given history.
func (r *Router) Generate(ctx context.Context, history []ConversationMessage) (*Reply, error) {
	reply, primaryErr := r.attempt(ctx, r.primary, history)
	if primaryErr == nil {
		return reply, nil
	}
	r.logger.Error("Primary provider failed", "provider", r.primary.Name(), "error", primaryErr)

	if r.fallback == nil {
		return nil, fmt.Errorf("provider %s: %w", r.primary.Name(), primaryErr)
	}

	reply, fallbackErr := r.attempt(ctx, r.fallback, history)
	if fallbackErr == nil {
		r.logger.Info("Fallback provider succeeded", "provider", r.fallback.Name())
		return reply, nil
	}
	r.logger.Error("Fallback provider failed", "provider", r.fallback.Name(), "error", fallbackErr)

	return nil, errors.Join(
		fmt.Errorf("provider %s: %w", r.primary.Name(), primaryErr),
		fmt.Errorf("provider %s: %w", r.fallback.Name(), fallbackErr),
	)
}

type attemptResult struct {
	reply *Reply
	err   error
}

// attempt runs one provider call bounded by the attempt timeout. The call is
// driven in a goroutine so a provider that ignores cancellation still cannot
// stall the conversation past the budget.
func (r *Router) attempt(ctx context.Context, p Provider, history []ConversationMessage) (*Reply, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		reply, err := p.Generate(attemptCtx, history)
		done <- attemptResult{reply: reply, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		if res.reply == nil {
			return nil, fmt.Errorf("provider returned no reply")
		}
		return res.reply, nil
	case <-attemptCtx.Done():
		return nil, fmt.Errorf("provider timed out after %s: %w", r.attemptTimeout, attemptCtx.Err())
	}
}
