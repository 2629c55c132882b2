package entities

import "encoding/json"

// GenerateRequest is a single-shot completion, optionally with inline images and a
// structured output schema.
type GenerateRequest struct {
	Model       string
	System      string
	Prompt      string
	Images      [][]byte
	Format      json.RawMessage
	Temperature *float64
}

// Deterministic returns a pointer to a zero temperature.
func Deterministic() *float64 {
	t := 0.0
	return &t
}
