package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

var (
	schemaOnce   sync.Once
	schemaJSON   string
	schemaGenErr error
)

// ActionProposalSchema returns the JSON Schema for the action block a
// provider may append to its reply. Generated once by reflection.
func ActionProposalSchema() (string, error) {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			AllowAdditionalProperties: true,
			ExpandedStruct:            true,
		}
		schema := r.Reflect(&ProposalEnvelope{})
		schema.Title = "Chief of Staff Action Proposals"
		schema.Description = "Structured side-effecting actions proposed alongside a conversational reply."

		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			schemaGenErr = fmt.Errorf("marshaling action schema: %w", err)
			return
		}
		schemaJSON = string(data)
	})
	return schemaJSON, schemaGenErr
}

// buildPrompt renders the system preamble, the response contract, and the
// conversation history into a single prompt for providers that take plain
// text input.
func buildPrompt(history []ConversationMessage) (string, error) {
	schema, err := ActionProposalSchema()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are the user's financial chief of staff: a concise, execution-focused assistant\n")
	b.WriteString("for accounts, budgets, bills, subscriptions, and scheduling.\n\n")
	b.WriteString("Respond to the latest user message using the conversation history below.\n")
	b.WriteString("If you want to propose side-effecting actions (calendar, email, transaction,\n")
	b.WriteString("reminder, note), append exactly one fenced ```json block after your reply whose\n")
	b.WriteString("body conforms to this schema:\n\n")
	b.WriteString(schema)
	b.WriteString("\n\nClassify each action's risk_level as \"low\" or \"high\". Anything that moves money\n")
	b.WriteString("or contacts third parties is high. Propose no actions if none are needed.\n\n")
	b.WriteString("Conversation:\n")
	for _, m := range history {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String(), nil
}
