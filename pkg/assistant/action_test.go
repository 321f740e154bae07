package assistant

import (
	"encoding/json"
	"testing"
)

func TestDecodePayloadShapes(t *testing.T) {
	cases := []struct {
		actionType ActionType
		raw        string
		check      func(t *testing.T, p ActionPayload)
	}{
		{
			ActionTypeEmail,
			`{"to":["cfo@example.com"],"subject":"Q3 numbers","body":"See attached."}`,
			func(t *testing.T, p ActionPayload) {
				email, ok := p.(EmailPayload)
				if !ok {
					t.Fatalf("payload type = %T, want EmailPayload", p)
				}
				if len(email.To) != 1 || email.Subject != "Q3 numbers" {
					t.Errorf("unexpected email payload: %+v", email)
				}
			},
		},
		{
			ActionTypeTransaction,
			`{"from_account":"checking","payee":"City Power","amount_cents":8250,"currency":"USD"}`,
			func(t *testing.T, p ActionPayload) {
				tx, ok := p.(TransactionPayload)
				if !ok {
					t.Fatalf("payload type = %T, want TransactionPayload", p)
				}
				if tx.AmountCents != 8250 || tx.Currency != "USD" {
					t.Errorf("unexpected transaction payload: %+v", tx)
				}
			},
		},
		{
			ActionTypeNote,
			`{"body":"call the accountant"}`,
			func(t *testing.T, p ActionPayload) {
				if _, ok := p.(NotePayload); !ok {
					t.Fatalf("payload type = %T, want NotePayload", p)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.actionType), func(t *testing.T) {
			p, err := decodePayload(tc.actionType, json.RawMessage(tc.raw))
			if err != nil {
				t.Fatalf("decodePayload failed: %v", err)
			}
			tc.check(t, p)
		})
	}
}

func TestDecodePayloadUnknownType(t *testing.T) {
	if _, err := decodePayload(ActionType("teleport"), json.RawMessage(`{}`)); err == nil {
		t.Error("unknown action type must not decode")
	}
}

func TestDecodePayloadEmptyRaw(t *testing.T) {
	p, err := decodePayload(ActionTypeNote, nil)
	if err != nil {
		t.Fatalf("empty payload should decode to the zero shape: %v", err)
	}
	if _, ok := p.(NotePayload); !ok {
		t.Errorf("payload type = %T, want NotePayload", p)
	}
}

func TestActionStatusIsTerminal(t *testing.T) {
	terminal := map[ActionStatus]bool{
		ActionStatusPending:  false,
		ActionStatusApproved: false,
		ActionStatusRejected: true,
		ActionStatusExecuted: true,
		ActionStatusFailed:   true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestActionQueueOrderAndFilter(t *testing.T) {
	q := newActionQueue()
	for _, desc := range []string{"a", "b", "c"} {
		a, err := newPendingAction(ActionProposal{
			Type:        ActionTypeNote,
			Description: desc,
			RiskLevel:   RiskLow,
			Payload:     json.RawMessage(`{"body":"x"}`),
		})
		if err != nil {
			t.Fatalf("newPendingAction failed: %v", err)
		}
		q.add(a)
	}

	all := q.all()
	if len(all) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].Description != want {
			t.Errorf("insertion order broken at %d: %s", i, all[i].Description)
		}
	}

	// Mark the middle one rejected directly and filter.
	mid, _ := q.get(all[1].ID)
	mid.Status = ActionStatusRejected

	pending := q.filter(ActionStatusPending)
	if len(pending) != 2 || pending[0].Description != "a" || pending[1].Description != "c" {
		t.Errorf("filter(pending) = %+v", pending)
	}

	// all() hands out copies.
	copies := q.all()
	copies[0].Status = ActionStatusFailed
	if fresh, _ := q.get(copies[0].ID); fresh.Status == ActionStatusFailed {
		t.Error("mutating an all() result leaked into the queue")
	}
}
