package interfaces

import (
	"context"

	"github.com/drujensen/deskimager/internal/domain/entities"
)

// InferenceClient is a connection to one inference server. Implementations are safe for
// concurrent use.
type InferenceClient interface {
	// Chat sends the conversation and returns the final assistant message. When tools are
	// given the client executes requested tool calls and continues until the model answers.
	Chat(ctx context.Context, model string, messages []*entities.Message, tools []entities.Tool, options map[string]any) (*entities.Message, error)
	Generate(ctx context.Context, req *entities.GenerateRequest) (string, error)
	ListModels(ctx context.Context) ([]entities.Model, error)
	// Probe checks that the server answers at all.
	Probe(ctx context.Context) error
}

// InferenceClientFactory opens a client for a server URL.
type InferenceClientFactory interface {
	NewClient(baseURL string) (InferenceClient, error)
}
