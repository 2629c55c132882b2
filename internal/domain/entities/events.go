package entities

import (
	"time"

	"github.com/google/uuid"
)

// ToolCallEvent records one tool execution performed during a chat request.
type ToolCallEvent struct {
	ID        string    `json:"id"`
	ToolName  string    `json:"tool_name"`
	Arguments string    `json:"arguments"`
	Result    string    `json:"result"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewToolCallEvent(toolName, arguments, result, errorMsg string) *ToolCallEvent {
	return &ToolCallEvent{
		ID:        uuid.New().String(),
		ToolName:  toolName,
		Arguments: arguments,
		Result:    result,
		Error:     errorMsg,
		Timestamp: time.Now(),
	}
}
