package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the externally observable snapshot of a session. Every field is a
// copy; mutating a snapshot never affects the orchestrator.
type State struct {
	// ConversationHistory holds every message in insertion order.
	ConversationHistory []ConversationMessage
	// PendingActions holds every tracked action, pending and terminal, in
	// insertion order. Filter by status for display.
	PendingActions []PendingAction
	// IsProcessing is true exactly while a Chat call's provider round trip
	// is in flight.
	IsProcessing bool
}

// Pending returns the subset of actions still awaiting a decision.
func (s State) Pending() []PendingAction {
	var out []PendingAction
	for _, a := range s.PendingActions {
		if a.Status == ActionStatusPending {
			out = append(out, a)
		}
	}
	return out
}

// ChiefOfStaff is the stateful coordinator of one conversation session and
// its action queue. It is the sole mutator of its state; consumers observe it
// through snapshots and subscription callbacks. Construct one instance per
// session and hand it to whoever needs it; there is no package-level
// singleton.
type ChiefOfStaff struct {
	cfg       Config
	router    *Router
	executors *ExecutorRegistry
	logger    Logger
	subs      *subscriberList

	mu         sync.Mutex
	history    []ConversationMessage
	queue      *actionQueue
	processing bool
}

// Option customizes a ChiefOfStaff at construction.
type Option func(*ChiefOfStaff)

// WithLogger injects a logger.
func WithLogger(l Logger) Option {
	return func(c *ChiefOfStaff) { c.logger = l }
}

// WithExecutors injects the executor registry used to perform approved
// actions. Default is a registry whose fallback only logs.
func WithExecutors(r *ExecutorRegistry) Option {
	return func(c *ChiefOfStaff) { c.executors = r }
}

// WithRouter replaces the provider router built from the config. Intended for
// wiring custom or in-memory providers.
func WithRouter(r *Router) Option {
	return func(c *ChiefOfStaff) { c.router = r }
}

// New creates a ChiefOfStaff session from the given config.
func New(cfg Config, opts ...Option) *ChiefOfStaff {
	c := &ChiefOfStaff{
		cfg:   cfg,
		queue: newActionQueue(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = NewDefaultLogger()
	}
	if c.executors == nil {
		c.executors = NewExecutorRegistry(NewLogExecutor(c.logger))
	}
	if c.router == nil {
		var fallback Provider
		if cfg.FallbackProvider != "" {
			fallback = NewProvider(cfg.FallbackProvider, c.logger)
		}
		c.router = NewRouter(NewProvider(cfg.PrimaryProvider, c.logger), fallback, cfg.attemptTimeout(), c.logger)
	}
	c.subs = newSubscriberList(c.logger)
	return c
}

// Subscribe registers a callback invoked synchronously with a state snapshot
// after every state-mutating operation. The returned function deregisters the
// callback; calling it more than once is a no-op.
func (c *ChiefOfStaff) Subscribe(fn Subscriber) func() {
	return c.subs.add(fn)
}

// GetState returns a snapshot of the current session state.
func (c *ChiefOfStaff) GetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// snapshotLocked copies the state. Callers must hold c.mu.
func (c *ChiefOfStaff) snapshotLocked() State {
	history := make([]ConversationMessage, len(c.history))
	copy(history, c.history)
	return State{
		ConversationHistory: history,
		PendingActions:      c.queue.all(),
		IsProcessing:        c.processing,
	}
}

// Chat runs one conversation turn: it appends the user message, drives the
// provider round trip, admits any proposed actions, and appends the assistant
// reply. Provider failure is not an error to the caller: it surfaces as an
// assistant message and the session stays usable. Chat returns an error only
// for empty input (ErrEmptyMessage) or when another turn is already in flight
// (ErrBusy); neither mutates the history.
func (c *ChiefOfStaff) Chat(ctx context.Context, message string) error {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	requestID := "req-" + uuid.New().String()[:8]

	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.processing = true
	c.history = append(c.history, newMessage(RoleUser, trimmed))
	historyCopy := make([]ConversationMessage, len(c.history))
	copy(historyCopy, c.history)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.subs.notify(snapshot)
	c.logger.Info("Chat turn started", "request_id", requestID, "history_len", len(historyCopy))

	reply, err := c.router.Generate(ctx, historyCopy)
	if err != nil {
		c.logger.Error("Chat turn failed", "request_id", requestID, "error", err)
		c.finishTurn(newMessage(RoleAssistant,
			fmt.Sprintf("I couldn't reach my reasoning providers (%v). Nothing was changed; please try again.", err)))
		return nil
	}

	admitted := c.admitProposals(ctx, requestID, reply.Actions)

	text := reply.Text
	if text == "" {
		text = "Done."
	}
	c.finishTurn(newMessage(RoleAssistant, text))
	c.logger.Info("Chat turn completed",
		"request_id", requestID,
		"proposed_actions", len(reply.Actions),
		"admitted_actions", admitted)
	return nil
}

// finishTurn appends the assistant message, clears the processing flag, and
// notifies. Every exit path of Chat after the busy guard goes through here so
// the flag can never stick.
func (c *ChiefOfStaff) finishTurn(msg ConversationMessage) {
	c.mu.Lock()
	c.history = append(c.history, msg)
	c.processing = false
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.subs.notify(snapshot)
}

// admitProposals applies the admission policy to each candidate action.
// Auto-admitted actions execute before Chat resolves; the rest queue as
// pending. Malformed proposals are logged and skipped; they never become
// half-built queue entries. Returns the number of actions added to the queue.
func (c *ChiefOfStaff) admitProposals(ctx context.Context, requestID string, proposals []ActionProposal) int {
	admitted := 0
	for _, p := range proposals {
		action, err := newPendingAction(p)
		if err != nil {
			c.logger.Error("Dropping malformed action proposal",
				"request_id", requestID, "type", p.Type, "error", err)
			continue
		}

		c.mu.Lock()
		c.queue.add(action)
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		c.subs.notify(snapshot)
		admitted++

		if c.cfg.autoExecute(action.RiskLevel) {
			if err := c.claimPending(action.ID, ActionStatusApproved, "auto-approving"); err == nil {
				c.execute(ctx, action.ID)
			}
		}
	}
	return admitted
}

// ApproveAction transitions a pending action to approved and executes its
// side effect synchronously. On executor success the action becomes executed;
// on failure it becomes failed with the error recorded, and that error is
// returned. Unknown or non-pending ids return ErrActionNotFound or
// ErrActionNotPending without mutating anything.
func (c *ChiefOfStaff) ApproveAction(ctx context.Context, id string) error {
	if err := c.claimPending(id, ActionStatusApproved, "approving"); err != nil {
		return err
	}
	return c.execute(ctx, id)
}

// RejectAction transitions a pending action to the terminal rejected status.
func (c *ChiefOfStaff) RejectAction(id string) error {
	if err := c.claimPending(id, ActionStatusRejected, "rejecting"); err != nil {
		return err
	}
	c.logger.Info("Action rejected", "action_id", id)
	return nil
}

// claimPending atomically moves a pending action to the given status. The
// status field acts as a per-action mutex: concurrent approve/reject calls on
// the same id cannot both win.
func (c *ChiefOfStaff) claimPending(id string, status ActionStatus, verb string) error {
	c.mu.Lock()
	action, ok := c.queue.get(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%s %q: %w", verb, id, ErrActionNotFound)
	}
	if action.Status != ActionStatusPending {
		c.mu.Unlock()
		return fmt.Errorf("%s %q (status %s): %w", verb, id, action.Status, ErrActionNotPending)
	}
	action.Status = status
	action.UpdatedAt = time.Now().UTC()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.subs.notify(snapshot)
	return nil
}

// transition updates an action's status and notifies subscribers.
func (c *ChiefOfStaff) transition(id string, status ActionStatus, errSummary string) {
	c.mu.Lock()
	action, ok := c.queue.get(id)
	if !ok {
		c.mu.Unlock()
		return
	}
	action.Status = status
	action.Error = errSummary
	action.UpdatedAt = time.Now().UTC()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.subs.notify(snapshot)
}

// execute performs an approved action's side effect and records the terminal
// status. The executor runs outside the state lock so a slow side effect
// cannot block snapshots or rejections of other actions.
func (c *ChiefOfStaff) execute(ctx context.Context, id string) error {
	c.mu.Lock()
	action, ok := c.queue.get(id)
	if !ok || action.Status != ActionStatusApproved {
		c.mu.Unlock()
		return fmt.Errorf("executing %q: %w", id, ErrActionNotFound)
	}
	actionCopy := *action
	c.mu.Unlock()

	executor, err := c.executors.Get(actionCopy.Type)
	if err == nil {
		err = executor.Execute(ctx, &actionCopy)
	}

	if err != nil {
		c.logger.Error("Action execution failed", "action_id", id, "type", actionCopy.Type, "error", err)
		c.transition(id, ActionStatusFailed, err.Error())
		return fmt.Errorf("executing action %s: %w", id, err)
	}

	c.logger.Info("Action executed", "action_id", id, "type", actionCopy.Type)
	c.transition(id, ActionStatusExecuted, "")
	return nil
}

// Restore seeds a session from previously saved state, e.g. a transcript
// loaded from disk. It replaces any existing history and queue.
func (c *ChiefOfStaff) Restore(history []ConversationMessage, actions []PendingAction) {
	c.mu.Lock()
	c.history = append(c.history[:0], history...)
	c.queue = newActionQueue()
	for i := range actions {
		a := actions[i]
		c.queue.add(&a)
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.subs.notify(snapshot)
}
