package entities

import (
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
)

// VisionFamily is the model family marker that identifies vision-capable models.
const VisionFamily = "clip"

// Model describes one model reported by the inference server.
type Model struct {
	Name          string    `json:"name"`
	Digest        string    `json:"digest,omitempty"`
	Family        string    `json:"family,omitempty"`
	Families      []string  `json:"families,omitempty"`
	ParameterSize string    `json:"parameter_size,omitempty"`
	Quantization  string    `json:"quantization,omitempty"`
	Size          int64     `json:"size"`
	ModifiedAt    time.Time `json:"modified_at"`
}

func (m *Model) IsVision() bool {
	return m.Family == VisionFamily || slices.Contains(m.Families, VisionFamily)
}

func (m *Model) FilterValue() string {
	return m.Name
}

func (m *Model) Title() string {
	return m.Name
}

func (m *Model) Description() string {
	desc := humanize.Bytes(uint64(m.Size))
	if m.ParameterSize != "" {
		desc = fmt.Sprintf("%s | %s", desc, m.ParameterSize)
	}
	if m.Quantization != "" {
		desc = fmt.Sprintf("%s | %s", desc, m.Quantization)
	}
	if m.IsVision() {
		desc += " | vision"
	}
	return desc
}

// ModelNames returns the names of models in order.
func ModelNames(models []Model) []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names
}

// ReconcileActiveModel keeps current when it is still listed and otherwise falls back to the
// first model. It returns "" when models is empty.
func ReconcileActiveModel(current string, models []Model) string {
	if len(models) == 0 {
		return ""
	}
	for _, m := range models {
		if m.Name == current {
			return current
		}
	}
	return models[0].Name
}
