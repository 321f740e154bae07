package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func countingProvider(name string, calls *int32, reply *Reply, err error) *stubProvider {
	return &stubProvider{
		name: name,
		generate: func(ctx context.Context, history []ConversationMessage) (*Reply, error) {
			atomic.AddInt32(calls, 1)
			return reply, err
		},
	}
}

func TestRouterPrimarySuccessSkipsFallback(t *testing.T) {
	var primaryCalls, fallbackCalls int32
	r := NewRouter(
		countingProvider("primary", &primaryCalls, &Reply{Text: "from primary"}, nil),
		countingProvider("fallback", &fallbackCalls, &Reply{Text: "from fallback"}, nil),
		time.Second, nopLogger{})

	reply, err := r.Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply.Text != "from primary" {
		t.Errorf("reply = %q, want primary's", reply.Text)
	}
	if primaryCalls != 1 || fallbackCalls != 0 {
		t.Errorf("calls: primary=%d fallback=%d, want 1/0", primaryCalls, fallbackCalls)
	}
}

func TestRouterFallsBackExactlyOnce(t *testing.T) {
	var primaryCalls, fallbackCalls int32
	r := NewRouter(
		countingProvider("primary", &primaryCalls, nil, fmt.Errorf("rate limited")),
		countingProvider("fallback", &fallbackCalls, &Reply{Text: "rescued"}, nil),
		time.Second, nopLogger{})

	reply, err := r.Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply.Text != "rescued" {
		t.Errorf("reply = %q, want fallback's", reply.Text)
	}
	if primaryCalls != 1 || fallbackCalls != 1 {
		t.Errorf("calls: primary=%d fallback=%d, want 1/1", primaryCalls, fallbackCalls)
	}
}

func TestRouterAggregatesBothFailures(t *testing.T) {
	var primaryCalls, fallbackCalls int32
	primaryErr := fmt.Errorf("rate limited")
	fallbackErr := fmt.Errorf("quota exceeded")
	r := NewRouter(
		countingProvider("primary", &primaryCalls, nil, primaryErr),
		countingProvider("fallback", &fallbackCalls, nil, fallbackErr),
		time.Second, nopLogger{})

	_, err := r.Generate(context.Background(), nil)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !errors.Is(err, primaryErr) || !errors.Is(err, fallbackErr) {
		t.Errorf("aggregated error should wrap both attempts, got %v", err)
	}
	if !strings.Contains(err.Error(), "primary") || !strings.Contains(err.Error(), "fallback") {
		t.Errorf("aggregated error should name both providers, got %v", err)
	}
	if primaryCalls != 1 || fallbackCalls != 1 {
		t.Errorf("each provider must be tried exactly once, got %d/%d", primaryCalls, fallbackCalls)
	}
}

func TestRouterNoFallbackConfigured(t *testing.T) {
	var primaryCalls int32
	primaryErr := fmt.Errorf("boom")
	r := NewRouter(countingProvider("primary", &primaryCalls, nil, primaryErr), nil, time.Second, nopLogger{})

	_, err := r.Generate(context.Background(), nil)
	if !errors.Is(err, primaryErr) {
		t.Errorf("error should wrap the primary failure, got %v", err)
	}
}

func TestRouterAttemptTimeout(t *testing.T) {
	stalled := &stubProvider{
		name: "stalled",
		generate: func(ctx context.Context, history []ConversationMessage) (*Reply, error) {
			// Ignores cancellation on purpose.
			time.Sleep(500 * time.Millisecond)
			return &Reply{Text: "too late"}, nil
		},
	}
	r := NewRouter(stalled, nil, 20*time.Millisecond, nopLogger{})

	start := time.Now()
	_, err := r.Generate(context.Background(), nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error = %v, want a timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("Generate blocked %s; the budget must bound a stalled provider", elapsed)
	}
}

func TestRouterTimeoutTriggersFallback(t *testing.T) {
	stalled := &stubProvider{
		name: "stalled",
		generate: func(ctx context.Context, history []ConversationMessage) (*Reply, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	var fallbackCalls int32
	r := NewRouter(stalled,
		countingProvider("fallback", &fallbackCalls, &Reply{Text: "rescued"}, nil),
		20*time.Millisecond, nopLogger{})

	reply, err := r.Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply.Text != "rescued" || fallbackCalls != 1 {
		t.Errorf("fallback should rescue a timed-out primary, got %q (%d calls)", reply.Text, fallbackCalls)
	}
}

func TestRouterNilReplyIsError(t *testing.T) {
	nilProvider := &stubProvider{
		name:     "broken",
		generate: func(ctx context.Context, history []ConversationMessage) (*Reply, error) { return nil, nil },
	}
	r := NewRouter(nilProvider, nil, time.Second, nopLogger{})
	if _, err := r.Generate(context.Background(), nil); err == nil {
		t.Error("a nil reply with nil error must surface as an error")
	}
}
