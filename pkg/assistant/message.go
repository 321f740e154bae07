package assistant

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ConversationMessage is a single turn in the session history. Messages are
// immutable once appended: the orchestrator hands out copies only.
type ConversationMessage struct {
	ID        string    `json:"id" yaml:"id"`
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// newMessage creates a message with a generated id and the current time.
func newMessage(role Role, content string) ConversationMessage {
	return ConversationMessage{
		ID:        "msg-" + uuid.New().String()[:8],
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}
