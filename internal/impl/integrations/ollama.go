package integrations

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/errors"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"github.com/google/uuid"
	ollama "github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

const (
	maxToolIterations = 8
	maxAttempts       = 3
)

// OllamaClient talks to an Ollama server through its native API
type OllamaClient struct {
	client *ollama.Client
	base   *url.URL
	logger *zap.Logger
}

// NewOllamaClient creates a new client bound to base
func NewOllamaClient(base *url.URL, httpClient *http.Client, logger *zap.Logger) *OllamaClient {
	return &OllamaClient{
		client: ollama.NewClient(base, httpClient),
		base:   base,
		logger: logger.With(zap.String("server", base.String())),
	}
}

// Probe checks that the server is up
func (c *OllamaClient) Probe(ctx context.Context) error {
	if err := c.client.Heartbeat(ctx); err != nil {
		return errors.UnavailableErrorf("ollama is not running at %s: %v", c.base, err)
	}
	return nil
}

// ListModels returns the locally installed models
func (c *OllamaClient) ListModels(ctx context.Context) ([]entities.Model, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, errors.UnavailableErrorf("failed to list models: %v", err)
	}

	models := make([]entities.Model, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, entities.Model{
			Name:          m.Name,
			Digest:        m.Digest,
			Family:        m.Details.Family,
			Families:      m.Details.Families,
			ParameterSize: m.Details.ParameterSize,
			Quantization:  m.Details.QuantizationLevel,
			Size:          m.Size,
			ModifiedAt:    m.ModifiedAt,
		})
	}
	c.logger.Debug("Listed models", zap.Int("count", len(models)))
	return models, nil
}

// Generate runs a single completion without streaming
func (c *OllamaClient) Generate(ctx context.Context, req *entities.GenerateRequest) (string, error) {
	stream := false
	greq := &ollama.GenerateRequest{
		Model:   req.Model,
		System:  req.System,
		Prompt:  req.Prompt,
		Stream:  &stream,
		Format:  req.Format,
		Options: temperatureOptions(req.Temperature, nil),
	}
	for _, img := range req.Images {
		greq.Images = append(greq.Images, ollama.ImageData(img))
	}

	var text strings.Builder
	err := c.withRetry(ctx, "generate", func() error {
		text.Reset()
		return c.client.Generate(ctx, greq, func(gr ollama.GenerateResponse) error {
			text.WriteString(gr.Response)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return text.String(), nil
}

// Chat sends the conversation and executes tool calls until the model answers in text
func (c *OllamaClient) Chat(ctx context.Context, model string, messages []*entities.Message, tools []entities.Tool, options map[string]any) (*entities.Message, error) {
	apiTools, err := convertTools(tools)
	if err != nil {
		return nil, err
	}
	toolsByName := make(map[string]entities.Tool, len(tools))
	for _, t := range tools {
		toolsByName[t.Name()] = t
	}

	stream := false
	req := &ollama.ChatRequest{
		Model:    model,
		Messages: convertMessages(messages),
		Stream:   &stream,
		Tools:    apiTools,
		Options:  options,
	}

	for iteration := 1; iteration <= maxToolIterations; iteration++ {
		if ctx.Err() != nil {
			return nil, errors.CanceledErrorf("chat canceled: %v", ctx.Err())
		}
		c.logger.Debug("Chat iteration", zap.Int("iteration", iteration), zap.Int("messages", len(req.Messages)))

		var reply ollama.Message
		err := c.withRetry(ctx, "chat", func() error {
			reply = ollama.Message{}
			return c.client.Chat(ctx, req, func(cr ollama.ChatResponse) error {
				reply.Role = cr.Message.Role
				reply.Content += cr.Message.Content
				reply.ToolCalls = append(reply.ToolCalls, cr.Message.ToolCalls...)
				return nil
			})
		})
		if err != nil {
			return nil, err
		}

		if len(reply.ToolCalls) == 0 {
			return &entities.Message{
				ID:        uuid.New().String(),
				Role:      entities.RoleAssistant,
				Content:   reply.Content,
				Timestamp: time.Now(),
			}, nil
		}

		reply.Role = entities.RoleAssistant
		req.Messages = append(req.Messages, reply)
		for _, call := range reply.ToolCalls {
			req.Messages = append(req.Messages, c.executeTool(toolsByName, call))
		}
	}

	return nil, errors.InternalErrorf("model %s kept calling tools after %d iterations", model, maxToolIterations)
}

func (c *OllamaClient) executeTool(toolsByName map[string]entities.Tool, call ollama.ToolCall) ollama.Message {
	name := call.Function.Name
	args, err := json.Marshal(call.Function.Arguments)
	if err != nil {
		args = []byte("{}")
	}

	var result, toolError string
	tool, ok := toolsByName[name]
	if !ok {
		toolError = fmt.Sprintf("tool %s not found", name)
		c.logger.Warn("Model requested unknown tool", zap.String("toolName", name))
	} else {
		c.logger.Info("Executing tool", zap.String("toolName", name))
		out, err := tool.Execute(string(args))
		if err != nil {
			c.logger.Error("Tool execution failed", zap.String("toolName", name), zap.Error(err))
			toolError = err.Error()
		} else {
			result = out
		}
	}

	events.PublishToolCallEvent(entities.NewToolCallEvent(name, string(args), result, toolError))

	content := result
	if toolError != "" {
		content = fmt.Sprintf("Tool %s failed with error: %s", name, toolError)
	}
	return ollama.Message{Role: entities.RoleTool, Content: content, ToolName: name}
}

// withRetry retries transport failures and server errors with a linear backoff.
func (c *OllamaClient) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return errors.CanceledErrorf("%s canceled: %v", op, ctx.Err())
		}
		var statusErr ollama.StatusError
		if stderrors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
			return errors.ValidationErrorf("%s rejected: %v", op, err)
		}
		if attempt < maxAttempts {
			c.logger.Warn("Error making request, retrying", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
			select {
			case <-ctx.Done():
				return errors.CanceledErrorf("%s canceled: %v", op, ctx.Err())
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	return errors.UnavailableErrorf("%s failed: %v", op, err)
}

func convertMessages(messages []*entities.Message) []ollama.Message {
	out := make([]ollama.Message, 0, len(messages))
	for _, m := range messages {
		msg := ollama.Message{Role: m.Role, Content: m.Content, ToolName: m.ToolName}
		for _, img := range m.Images {
			msg.Images = append(msg.Images, ollama.ImageData(img))
		}
		out = append(out, msg)
	}
	return out
}

// convertTools describes tools with the JSON schema the chat endpoint expects.
func convertTools(tools []entities.Tool) (ollama.Tools, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	defs := make([]map[string]any, len(tools))
	for i, tool := range tools {
		required := make([]string, 0)
		properties := make(map[string]any)
		for _, param := range tool.Parameters() {
			property := map[string]any{
				"type":        param.Type,
				"description": param.Description,
			}
			if len(param.Enum) > 0 {
				property["enum"] = param.Enum
			}
			if param.Type == "array" && len(param.Items) > 0 {
				property["items"] = map[string]any{"type": param.Items[0].Type}
			}
			properties[param.Name] = property
			if param.Required {
				required = append(required, param.Name)
			}
		}
		defs[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        tool.Name(),
				"description": tool.Description(),
				"parameters": map[string]any{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		}
	}

	data, err := json.Marshal(defs)
	if err != nil {
		return nil, errors.InternalErrorf("failed to encode tools: %v", err)
	}
	var apiTools ollama.Tools
	if err := json.Unmarshal(data, &apiTools); err != nil {
		return nil, errors.InternalErrorf("failed to decode tools: %v", err)
	}
	return apiTools, nil
}

func temperatureOptions(temperature *float64, options map[string]any) map[string]any {
	if temperature == nil {
		return options
	}
	merged := make(map[string]any, len(options)+1)
	for k, v := range options {
		merged[k] = v
	}
	merged["temperature"] = *temperature
	return merged
}

var _ interfaces.InferenceClient = (*OllamaClient)(nil)
