package assistant

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ProposalEnvelope is the structure a provider appends to its reply when it
// wants to propose actions: a fenced ```json block whose body matches this
// shape. The schema embedded in the system prompt is generated from it.
type ProposalEnvelope struct {
	Actions []ActionProposal `json:"actions"`
}

var actionBlockRegex = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ParseReply splits a raw provider response into assistant text and action
// proposals. The last well-formed ```json block containing an "actions" array
// is consumed; everything else stays as text. Malformed blocks are left in
// the text untouched rather than dropped, so the user sees what the model
// actually said.
func ParseReply(raw string) *Reply {
	reply := &Reply{Text: strings.TrimSpace(raw)}

	matches := actionBlockRegex.FindAllStringSubmatchIndex(raw, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		body := raw[m[2]:m[3]]

		var envelope ProposalEnvelope
		if err := json.Unmarshal([]byte(body), &envelope); err != nil {
			continue
		}
		if envelope.Actions == nil {
			continue
		}

		reply.Actions = envelope.Actions
		reply.Text = strings.TrimSpace(raw[:m[0]] + raw[m[1]:])
		break
	}

	return reply
}
