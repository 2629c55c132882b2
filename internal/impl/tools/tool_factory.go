package tools

import (
	"sort"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/errors"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"go.uber.org/zap"
)

type ToolFactoryEntry struct {
	Name        string
	Description string
	ConfigKeys  []string
	Factory     func(name, description string, configuration map[string]string, logger *zap.Logger) entities.Tool
}

type ToolFactory struct {
	toolFactories map[string]*ToolFactoryEntry
	configuration map[string]map[string]string
}

// NewToolFactory registers every tool the agents can be given. configuration holds the
// per-tool settings keyed by tool name.
func NewToolFactory(finder interfaces.ImageFinder, configuration map[string]map[string]string) *ToolFactory {
	toolFactory := &ToolFactory{
		toolFactories: make(map[string]*ToolFactoryEntry),
		configuration: configuration,
	}

	toolFactory.register(&ToolFactoryEntry{
		Name:        "list_images",
		Description: `Lists the image files (png, jpg, jpeg) directly inside a directory, one path per line.`,
		Factory: func(name, description string, configuration map[string]string, logger *zap.Logger) entities.Tool {
			return NewListImagesTool(name, description, finder, logger)
		},
	})
	toolFactory.register(&ToolFactoryEntry{
		Name:        "search_images",
		Description: `Searches a directory and all of its subdirectories for image files (png, jpg, jpeg), one path per line.`,
		Factory: func(name, description string, configuration map[string]string, logger *zap.Logger) entities.Tool {
			return NewSearchImagesTool(name, description, finder, logger)
		},
	})
	toolFactory.register(&ToolFactoryEntry{
		Name:        "path_contains",
		Description: `Returns 'true' if a file path contains the given substring, otherwise 'false'.`,
		Factory: func(name, description string, configuration map[string]string, logger *zap.Logger) entities.Tool {
			return NewPathContainsTool(name, description, logger)
		},
	})
	toolFactory.register(&ToolFactoryEntry{
		Name:        "web_search",
		Description: `Searches the web with DuckDuckGo and returns the result titles, links and snippets as markdown.`,
		ConfigKeys:  []string{"search_url", "user_agent"},
		Factory: func(name, description string, configuration map[string]string, logger *zap.Logger) entities.Tool {
			return NewWebSearchTool(name, description, configuration, logger)
		},
	})
	toolFactory.register(&ToolFactoryEntry{
		Name:        "scrape_url",
		Description: `Fetches a web page and returns its content converted from HTML to markdown.`,
		ConfigKeys:  []string{"user_agent"},
		Factory: func(name, description string, configuration map[string]string, logger *zap.Logger) entities.Tool {
			return NewScrapeURLTool(name, description, configuration, logger)
		},
	})
	toolFactory.register(&ToolFactoryEntry{
		Name:        "calculator",
		Description: `Evaluates an arithmetic expression with + - * / %, parentheses and functions such as sqrt, abs, pow, min, max, sin, cos, log.`,
		Factory: func(name, description string, configuration map[string]string, logger *zap.Logger) entities.Tool {
			return NewCalculatorTool(name, description, logger)
		},
	})

	return toolFactory
}

func (t *ToolFactory) register(entry *ToolFactoryEntry) {
	t.toolFactories[entry.Name] = entry
}

func (t *ToolFactory) ListFactories() []*ToolFactoryEntry {
	factories := make([]*ToolFactoryEntry, 0, len(t.toolFactories))
	for _, factory := range t.toolFactories {
		factories = append(factories, factory)
	}
	sort.Slice(factories, func(i, j int) bool { return factories[i].Name < factories[j].Name })
	return factories
}

func (t *ToolFactory) GetFactoryByName(name string) (*ToolFactoryEntry, error) {
	factory, exists := t.toolFactories[name]
	if !exists {
		return nil, errors.NotFoundErrorf("Tool factory with name '%s' not found", name)
	}
	return factory, nil
}

// CreateTools instantiates the named tools in order.
func (t *ToolFactory) CreateTools(names []string, logger *zap.Logger) ([]entities.Tool, error) {
	tools := make([]entities.Tool, 0, len(names))
	for _, name := range names {
		factory, err := t.GetFactoryByName(name)
		if err != nil {
			return nil, err
		}
		config := map[string]string{}
		for _, key := range factory.ConfigKeys {
			if v, ok := t.configuration[name][key]; ok {
				config[key] = v
			}
		}
		tools = append(tools, factory.Factory(factory.Name, factory.Description, config, logger.With(zap.String("tool", name))))
	}
	return tools, nil
}
