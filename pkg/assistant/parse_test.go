package assistant

import (
	"strings"
	"testing"
)

func TestParseReplyPlainText(t *testing.T) {
	reply := ParseReply("Your checking balance is $4,210.\n")
	if reply.Text != "Your checking balance is $4,210." {
		t.Errorf("text = %q", reply.Text)
	}
	if len(reply.Actions) != 0 {
		t.Errorf("plain text should carry no actions, got %d", len(reply.Actions))
	}
}

func TestParseReplyExtractsActionBlock(t *testing.T) {
	raw := "I'll schedule the payment for Friday.\n\n" +
		"```json\n" +
		`{"actions":[{"type":"transaction","description":"Pay rent","risk_level":"high","payload":{"from_account":"checking","payee":"Landlord","amount_cents":180000,"currency":"USD"}}]}` +
		"\n```\n"

	reply := ParseReply(raw)
	if reply.Text != "I'll schedule the payment for Friday." {
		t.Errorf("text should have the block stripped, got %q", reply.Text)
	}
	if len(reply.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(reply.Actions))
	}
	a := reply.Actions[0]
	if a.Type != ActionTypeTransaction || a.RiskLevel != RiskHigh {
		t.Errorf("unexpected proposal: %+v", a)
	}
}

func TestParseReplyMalformedBlockStaysInText(t *testing.T) {
	raw := "Here you go.\n```json\n{\"actions\": [broken\n```"
	reply := ParseReply(raw)
	if len(reply.Actions) != 0 {
		t.Errorf("malformed block must not produce actions, got %d", len(reply.Actions))
	}
	if !strings.Contains(reply.Text, "broken") {
		t.Errorf("malformed block should remain visible in text, got %q", reply.Text)
	}
}

func TestParseReplyIgnoresBlocksWithoutActions(t *testing.T) {
	raw := "Here is the data you asked for:\n```json\n{\"balance_cents\": 421000}\n```"
	reply := ParseReply(raw)
	if len(reply.Actions) != 0 {
		t.Errorf("non-envelope json should not produce actions, got %d", len(reply.Actions))
	}
	if !strings.Contains(reply.Text, "balance_cents") {
		t.Errorf("non-envelope block should stay in text, got %q", reply.Text)
	}
}

func TestParseReplyUsesLastWellFormedBlock(t *testing.T) {
	raw := "First draft:\n" +
		"```json\n{\"actions\":[{\"type\":\"note\",\"description\":\"draft\",\"risk_level\":\"low\",\"payload\":{\"body\":\"v1\"}}]}\n```\n" +
		"Actually, do this instead:\n" +
		"```json\n{\"actions\":[{\"type\":\"note\",\"description\":\"final\",\"risk_level\":\"low\",\"payload\":{\"body\":\"v2\"}}]}\n```"

	reply := ParseReply(raw)
	if len(reply.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(reply.Actions))
	}
	if reply.Actions[0].Description != "final" {
		t.Errorf("should consume the last block, got %q", reply.Actions[0].Description)
	}
	if !strings.Contains(reply.Text, "draft") {
		t.Errorf("earlier blocks stay in text, got %q", reply.Text)
	}
}

func TestParseReplyEmptyActionsArray(t *testing.T) {
	raw := "Nothing to do.\n```json\n{\"actions\":[]}\n```"
	reply := ParseReply(raw)
	if reply.Actions == nil || len(reply.Actions) != 0 {
		t.Errorf("empty envelope should yield an empty (non-nil) action list, got %#v", reply.Actions)
	}
	if reply.Text != "Nothing to do." {
		t.Errorf("text = %q", reply.Text)
	}
}
