package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/interfaces"
	"github.com/drujensen/deskimager/internal/domain/services"

	"go.uber.org/zap"
)

type pathArgs struct {
	Path string `json:"path"`
}

func parsePath(arguments string) (string, error) {
	var args pathArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}
	if strings.TrimSpace(args.Path) == "" {
		return "", fmt.Errorf("path is required")
	}
	return services.ExpandPath(args.Path)
}

var pathParameter = entities.Parameter{
	Name:        "path",
	Type:        "string",
	Description: "Absolute directory path. '~' expands to the home directory",
	Required:    true,
}

// ListImagesTool lists the images directly inside a directory.
type ListImagesTool struct {
	name        string
	description string
	finder      interfaces.ImageFinder
	logger      *zap.Logger
}

func NewListImagesTool(name, description string, finder interfaces.ImageFinder, logger *zap.Logger) *ListImagesTool {
	return &ListImagesTool{name: name, description: description, finder: finder, logger: logger}
}

func (t *ListImagesTool) Name() string {
	return t.name
}

func (t *ListImagesTool) Description() string {
	return t.description
}

func (t *ListImagesTool) Configuration() map[string]string {
	return map[string]string{}
}

func (t *ListImagesTool) Parameters() []entities.Parameter {
	return []entities.Parameter{pathParameter}
}

func (t *ListImagesTool) Execute(arguments string) (string, error) {
	t.logger.Debug("Listing images", zap.String("arguments", arguments))

	path, err := parsePath(arguments)
	if err != nil {
		return "", err
	}
	images, err := t.finder.List(path)
	if err != nil {
		t.logger.Warn("Failed to list images", zap.String("path", path), zap.Error(err))
		return "", err
	}
	return strings.Join(images, "\n"), nil
}

// SearchImagesTool finds images below a directory recursively.
type SearchImagesTool struct {
	name        string
	description string
	finder      interfaces.ImageFinder
	logger      *zap.Logger
}

func NewSearchImagesTool(name, description string, finder interfaces.ImageFinder, logger *zap.Logger) *SearchImagesTool {
	return &SearchImagesTool{name: name, description: description, finder: finder, logger: logger}
}

func (t *SearchImagesTool) Name() string {
	return t.name
}

func (t *SearchImagesTool) Description() string {
	return t.description
}

func (t *SearchImagesTool) Configuration() map[string]string {
	return map[string]string{}
}

func (t *SearchImagesTool) Parameters() []entities.Parameter {
	return []entities.Parameter{pathParameter}
}

func (t *SearchImagesTool) Execute(arguments string) (string, error) {
	t.logger.Debug("Searching images", zap.String("arguments", arguments))

	path, err := parsePath(arguments)
	if err != nil {
		return "", err
	}
	images, err := t.finder.Find(context.Background(), path)
	if err != nil {
		t.logger.Warn("Failed to search images", zap.String("path", path), zap.Error(err))
		return "", err
	}
	return strings.Join(images, "\n"), nil
}

// PathContainsTool lets the model filter paths by substring.
type PathContainsTool struct {
	name        string
	description string
	logger      *zap.Logger
}

func NewPathContainsTool(name, description string, logger *zap.Logger) *PathContainsTool {
	return &PathContainsTool{name: name, description: description, logger: logger}
}

func (t *PathContainsTool) Name() string {
	return t.name
}

func (t *PathContainsTool) Description() string {
	return t.description
}

func (t *PathContainsTool) Configuration() map[string]string {
	return map[string]string{}
}

func (t *PathContainsTool) Parameters() []entities.Parameter {
	return []entities.Parameter{
		{Name: "path", Type: "string", Description: "Path to the image file", Required: true},
		{Name: "substring", Type: "string", Description: "Substring to look for", Required: true},
	}
}

func (t *PathContainsTool) Execute(arguments string) (string, error) {
	var args struct {
		Path      string `json:"path"`
		Substring string `json:"substring"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}
	if strings.Contains(args.Path, args.Substring) {
		return "true", nil
	}
	return "false", nil
}

var (
	_ entities.Tool = (*ListImagesTool)(nil)
	_ entities.Tool = (*SearchImagesTool)(nil)
	_ entities.Tool = (*PathContainsTool)(nil)
)
