package assistant

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionStatus represents the current state of a proposed action.
type ActionStatus string

const (
	ActionStatusPending  ActionStatus = "pending"
	ActionStatusApproved ActionStatus = "approved"
	ActionStatusRejected ActionStatus = "rejected"
	ActionStatusExecuted ActionStatus = "executed"
	ActionStatusFailed   ActionStatus = "failed"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s ActionStatus) IsTerminal() bool {
	return s == ActionStatusRejected || s == ActionStatusExecuted || s == ActionStatusFailed
}

// ActionType categorizes the side effect an action performs.
type ActionType string

const (
	ActionTypeCalendar    ActionType = "calendar"
	ActionTypeEmail       ActionType = "email"
	ActionTypeTransaction ActionType = "transaction"
	ActionTypeReminder    ActionType = "reminder"
	ActionTypeNote        ActionType = "note"
)

// RiskLevel classifies an action for the approval policy.
type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)

// ActionPayload is the typed payload of a proposed action. Each ActionType has
// exactly one payload shape, so an invalid type/payload pairing cannot be
// constructed.
type ActionPayload interface {
	actionPayload()
}

// CalendarPayload schedules an event on the user's calendar.
type CalendarPayload struct {
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at,omitempty"`
	Location  string    `json:"location,omitempty"`
	Attendees []string  `json:"attendees,omitempty"`
}

// EmailPayload sends an email on the user's behalf.
type EmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// TransactionPayload moves money between accounts or pays a bill.
type TransactionPayload struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account,omitempty"`
	Payee       string `json:"payee,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Memo        string `json:"memo,omitempty"`
}

// ReminderPayload schedules a reminder notification.
type ReminderPayload struct {
	Message  string    `json:"message"`
	RemindAt time.Time `json:"remind_at"`
}

// NotePayload records a note in the user's workspace.
type NotePayload struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

func (CalendarPayload) actionPayload()    {}
func (EmailPayload) actionPayload()       {}
func (TransactionPayload) actionPayload() {}
func (ReminderPayload) actionPayload()    {}
func (NotePayload) actionPayload()        {}

// decodePayload unmarshals raw JSON into the payload shape for the given type.
func decodePayload(t ActionType, raw json.RawMessage) (ActionPayload, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch t {
	case ActionTypeCalendar:
		var p CalendarPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding calendar payload: %w", err)
		}
		return p, nil
	case ActionTypeEmail:
		var p EmailPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding email payload: %w", err)
		}
		return p, nil
	case ActionTypeTransaction:
		var p TransactionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding transaction payload: %w", err)
		}
		return p, nil
	case ActionTypeReminder:
		var p ReminderPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding reminder payload: %w", err)
		}
		return p, nil
	case ActionTypeNote:
		var p NotePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding note payload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown action type: %s", t)
	}
}

// ActionProposal is a candidate action extracted from a provider reply, before
// admission. Payload stays raw until the type is validated.
type ActionProposal struct {
	Type        ActionType      `json:"type"`
	Description string          `json:"description"`
	RiskLevel   RiskLevel       `json:"risk_level"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// PendingAction is a proposed side-effecting operation tracked by the
// orchestrator through its approval lifecycle.
type PendingAction struct {
	ID          string        `json:"id"`
	Type        ActionType    `json:"type"`
	Description string        `json:"description"`
	Payload     ActionPayload `json:"payload,omitempty"`
	Status      ActionStatus  `json:"status"`
	RiskLevel   RiskLevel     `json:"risk_level"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// newPendingAction validates a proposal and materializes it with a generated id.
func newPendingAction(p ActionProposal) (*PendingAction, error) {
	payload, err := decodePayload(p.Type, p.Payload)
	if err != nil {
		return nil, err
	}
	risk := p.RiskLevel
	if risk != RiskLow && risk != RiskHigh {
		// Unknown classifications are treated as high so they always gate
		// behind approval.
		risk = RiskHigh
	}
	now := time.Now().UTC()
	return &PendingAction{
		ID:          "act-" + uuid.New().String()[:8],
		Type:        p.Type,
		Description: p.Description,
		Payload:     payload,
		Status:      ActionStatusPending,
		RiskLevel:   risk,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// actionQueue stores actions keyed by id while preserving insertion order.
// It is not safe for concurrent use; the orchestrator's mutex guards it.
type actionQueue struct {
	byID  map[string]*PendingAction
	order []string
}

func newActionQueue() *actionQueue {
	return &actionQueue{byID: make(map[string]*PendingAction)}
}

func (q *actionQueue) add(a *PendingAction) {
	q.byID[a.ID] = a
	q.order = append(q.order, a.ID)
}

func (q *actionQueue) get(id string) (*PendingAction, bool) {
	a, ok := q.byID[id]
	return a, ok
}

// all returns copies of every tracked action in insertion order.
func (q *actionQueue) all() []PendingAction {
	out := make([]PendingAction, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, *q.byID[id])
	}
	return out
}

// filter returns copies of actions with the given status, in insertion order.
func (q *actionQueue) filter(status ActionStatus) []PendingAction {
	var out []PendingAction
	for _, id := range q.order {
		if a := q.byID[id]; a.Status == status {
			out = append(out, *a)
		}
	}
	return out
}
