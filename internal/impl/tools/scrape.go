package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/drujensen/deskimager/internal/domain/entities"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"go.uber.org/zap"
)

const (
	defaultUserAgent = "DeskImager/1.0 (+https://github.com/drujensen/deskimager)"
	maxScrapeChars   = 50000
	fetchTimeout     = 30 * time.Second
)

type ScrapeURLTool struct {
	name          string
	description   string
	configuration map[string]string
	logger        *zap.Logger
	client        *http.Client
}

func NewScrapeURLTool(name, description string, configuration map[string]string, logger *zap.Logger) *ScrapeURLTool {
	return &ScrapeURLTool{
		name:          name,
		description:   description,
		configuration: configuration,
		logger:        logger,
		client:        &http.Client{Timeout: fetchTimeout},
	}
}

func (t *ScrapeURLTool) Name() string {
	return t.name
}

func (t *ScrapeURLTool) Description() string {
	return t.description
}

func (t *ScrapeURLTool) Configuration() map[string]string {
	return t.configuration
}

func (t *ScrapeURLTool) Parameters() []entities.Parameter {
	return []entities.Parameter{
		{
			Name:        "url",
			Type:        "string",
			Description: "The URL to scrape. Must include the protocol (e.g., https://)",
			Required:    true,
		},
	}
}

func (t *ScrapeURLTool) Execute(arguments string) (string, error) {
	t.logger.Debug("Executing scrape", zap.String("arguments", arguments))

	var args struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}
	if args.URL == "" {
		return "", fmt.Errorf("url is required")
	}

	md, err := fetchMarkdown(t.client, args.URL, userAgent(t.configuration), maxScrapeChars)
	if err != nil {
		t.logger.Warn("Scrape failed", zap.String("url", args.URL), zap.Error(err))
		return "", err
	}
	t.logger.Info("Scraped page", zap.String("url", args.URL), zap.Int("chars", len(md)))
	return md, nil
}

func userAgent(configuration map[string]string) string {
	if ua := configuration["user_agent"]; ua != "" {
		return ua
	}
	return defaultUserAgent
}

// fetchMarkdown GETs url and converts the HTML body to markdown, truncated to limit bytes.
func fetchMarkdown(client *http.Client, url, agent string, limit int) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", agent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	md = strings.TrimSpace(md)

	if len(md) > limit {
		md = md[:limit] + "\n\n[Content truncated]"
	}
	return md, nil
}

var _ entities.Tool = (*ScrapeURLTool)(nil)
