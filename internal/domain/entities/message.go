package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// Message is one role-tagged turn of a conversation.
type Message struct {
	ID        string     `json:"id" bson:"id"`
	Role      string     `json:"role" bson:"role"`
	Content   string     `json:"content" bson:"content"`
	Images    [][]byte   `json:"-" bson:"-"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty" bson:"tool_calls,omitempty"`
	ToolName  string     `json:"tool_name,omitempty" bson:"tool_name,omitempty"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
}

func NewMessage(role, content string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Clone returns a copy that shares no slices with m.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.Images != nil {
		c.Images = make([][]byte, len(m.Images))
		copy(c.Images, m.Images)
	}
	if m.ToolCalls != nil {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(c.ToolCalls, m.ToolCalls)
	}
	return &c
}
