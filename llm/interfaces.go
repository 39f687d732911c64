package llm

import "context"

// TextGenerator is a single-prompt completion backend.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatGenerator answers the last message given the whole conversation.
type ChatGenerator interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	GetModel() string
}

// Backend is a configured language model able to serve both styles.
type Backend interface {
	TextGenerator
	ChatGenerator
}
