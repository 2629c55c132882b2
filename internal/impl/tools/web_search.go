package tools

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/drujensen/deskimager/internal/domain/entities"

	"go.uber.org/zap"
)

const (
	defaultSearchURL = "https://html.duckduckgo.com/html/"
	maxSearchChars   = 8000
)

// WebSearchTool queries the DuckDuckGo HTML endpoint and hands the result page back as markdown.
type WebSearchTool struct {
	name          string
	description   string
	configuration map[string]string
	logger        *zap.Logger
	client        *http.Client
}

func NewWebSearchTool(name, description string, configuration map[string]string, logger *zap.Logger) *WebSearchTool {
	return &WebSearchTool{
		name:          name,
		description:   description,
		configuration: configuration,
		logger:        logger,
		client:        &http.Client{Timeout: fetchTimeout},
	}
}

func (t *WebSearchTool) Name() string {
	return t.name
}

func (t *WebSearchTool) Description() string {
	return t.description
}

func (t *WebSearchTool) Configuration() map[string]string {
	return t.configuration
}

func (t *WebSearchTool) Parameters() []entities.Parameter {
	return []entities.Parameter{
		{
			Name:        "query",
			Type:        "string",
			Description: "Search query",
			Required:    true,
		},
	}
}

func (t *WebSearchTool) Execute(arguments string) (string, error) {
	t.logger.Debug("Executing search", zap.String("arguments", arguments))

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("query is required")
	}

	base := t.configuration["search_url"]
	if base == "" {
		base = defaultSearchURL
	}
	endpoint, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid search_url: %w", err)
	}
	q := endpoint.Query()
	q.Set("q", args.Query)
	endpoint.RawQuery = q.Encode()

	md, err := fetchMarkdown(t.client, endpoint.String(), userAgent(t.configuration), maxSearchChars)
	if err != nil {
		t.logger.Error("Search request failed", zap.String("query", args.Query), zap.Error(err))
		return "", err
	}
	if md == "" {
		return "No results found", nil
	}

	t.logger.Info("Web search completed", zap.String("query", args.Query))
	return md, nil
}

var _ entities.Tool = (*WebSearchTool)(nil)
