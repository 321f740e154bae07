package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Transcript files are markdown session archives: YAML frontmatter holding
// session metadata and the action queue, followed by conversation turns
// separated by "---" lines. User turns are blockquoted ("> "), assistant and
// system turns sit under a "## Assistant" / "## System" header.

// TranscriptMeta is the session metadata stored in transcript frontmatter.
type TranscriptMeta struct {
	ID            string    `yaml:"id"`
	Title         string    `yaml:"title"`
	Model         string    `yaml:"model,omitempty"`
	FallbackModel string    `yaml:"fallback_model,omitempty"`
	UpdatedAt     time.Time `yaml:"updated_at"`
}

// transcriptAction is the frontmatter form of a tracked action. The payload
// is stored as its JSON encoding so the typed shape survives the round trip.
type transcriptAction struct {
	ID          string    `yaml:"id"`
	Type        string    `yaml:"type"`
	Description string    `yaml:"description"`
	RiskLevel   string    `yaml:"risk_level"`
	Status      string    `yaml:"status"`
	Error       string    `yaml:"error,omitempty"`
	Payload     string    `yaml:"payload,omitempty"`
	CreatedAt   time.Time `yaml:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at"`
}

type transcriptFrontmatter struct {
	TranscriptMeta `yaml:",inline"`
	Actions        []transcriptAction `yaml:"actions,omitempty"`
}

// NewTranscriptMeta creates metadata for a fresh session transcript.
func NewTranscriptMeta(title, model, fallbackModel string) TranscriptMeta {
	return TranscriptMeta{
		ID:            "session-" + uuid.New().String()[:8],
		Title:         title,
		Model:         model,
		FallbackModel: fallbackModel,
		UpdatedAt:     time.Now().UTC(),
	}
}

// SaveTranscript writes the session state to path.
func SaveTranscript(path string, meta TranscriptMeta, state State) error {
	meta.UpdatedAt = time.Now().UTC()

	fm := transcriptFrontmatter{TranscriptMeta: meta}
	for _, a := range state.PendingActions {
		ta := transcriptAction{
			ID:          a.ID,
			Type:        string(a.Type),
			Description: a.Description,
			RiskLevel:   string(a.RiskLevel),
			Status:      string(a.Status),
			Error:       a.Error,
			CreatedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
		}
		if a.Payload != nil {
			data, err := json.Marshal(a.Payload)
			if err != nil {
				return fmt.Errorf("encoding payload for action %s: %w", a.ID, err)
			}
			ta.Payload = string(data)
		}
		fm.Actions = append(fm.Actions, ta)
	}

	yamlBytes, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("marshaling transcript frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n")

	for i, m := range state.ConversationHistory {
		if i > 0 {
			buf.WriteString("\n---\n")
		}
		buf.WriteString("\n")
		switch m.Role {
		case RoleUser:
			for _, line := range strings.Split(m.Content, "\n") {
				buf.WriteString("> ")
				buf.WriteString(line)
				buf.WriteString("\n")
			}
		case RoleSystem:
			buf.WriteString("## System\n\n")
			buf.WriteString(m.Content)
			buf.WriteString("\n")
		default:
			buf.WriteString("## Assistant\n\n")
			buf.WriteString(m.Content)
			buf.WriteString("\n")
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing transcript %s: %w", path, err)
	}
	return nil
}

// LoadTranscript reads a session transcript back into metadata, history, and
// the action queue. Message ids and timestamps are regenerated; the archive
// keeps content and order, not identity.
func LoadTranscript(path string) (TranscriptMeta, []ConversationMessage, []PendingAction, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return TranscriptMeta{}, nil, nil, fmt.Errorf("reading transcript %s: %w", path, err)
	}

	fmBytes, body, err := splitFrontmatter(content)
	if err != nil {
		return TranscriptMeta{}, nil, nil, fmt.Errorf("parsing transcript %s: %w", path, err)
	}

	var fm transcriptFrontmatter
	if err := yaml.Unmarshal(fmBytes, &fm); err != nil {
		return TranscriptMeta{}, nil, nil, fmt.Errorf("parsing transcript frontmatter: %w", err)
	}

	var actions []PendingAction
	for _, ta := range fm.Actions {
		payload, err := decodePayload(ActionType(ta.Type), json.RawMessage(ta.Payload))
		if err != nil {
			return TranscriptMeta{}, nil, nil, fmt.Errorf("restoring action %s: %w", ta.ID, err)
		}
		actions = append(actions, PendingAction{
			ID:          ta.ID,
			Type:        ActionType(ta.Type),
			Description: ta.Description,
			Payload:     payload,
			Status:      ActionStatus(ta.Status),
			RiskLevel:   RiskLevel(ta.RiskLevel),
			Error:       ta.Error,
			CreatedAt:   ta.CreatedAt,
			UpdatedAt:   ta.UpdatedAt,
		})
	}

	var history []ConversationMessage
	for _, cell := range strings.Split(string(body), "\n---\n") {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		history = append(history, parseTranscriptCell(cell))
	}

	return fm.TranscriptMeta, history, actions, nil
}

// splitFrontmatter separates the leading YAML frontmatter block from the body.
func splitFrontmatter(content []byte) ([]byte, []byte, error) {
	const marker = "---\n"
	if !bytes.HasPrefix(content, []byte(marker)) {
		return nil, nil, fmt.Errorf("missing frontmatter")
	}
	rest := content[len(marker):]
	end := bytes.Index(rest, []byte("\n"+marker))
	if end == -1 {
		return nil, nil, fmt.Errorf("unterminated frontmatter")
	}
	return rest[:end], rest[end+len(marker)+1:], nil
}

func parseTranscriptCell(cell string) ConversationMessage {
	switch {
	case strings.HasPrefix(cell, "## Assistant"):
		return newMessage(RoleAssistant, strings.TrimSpace(strings.TrimPrefix(cell, "## Assistant")))
	case strings.HasPrefix(cell, "## System"):
		return newMessage(RoleSystem, strings.TrimSpace(strings.TrimPrefix(cell, "## System")))
	default:
		lines := strings.Split(cell, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(strings.TrimPrefix(line, "> "), ">")
		}
		return newMessage(RoleUser, strings.TrimSpace(strings.Join(lines, "\n")))
	}
}
