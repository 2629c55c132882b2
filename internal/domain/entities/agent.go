package entities

import "fmt"

// AgentKind identifies one of the fixed assistant pipelines.
type AgentKind int

const (
	AgentChat AgentKind = iota
	AgentWebScrape
	AgentImages
)

// AgentKinds lists every agent in display order.
var AgentKinds = []AgentKind{AgentChat, AgentWebScrape, AgentImages}

func (k AgentKind) String() string {
	switch k {
	case AgentChat:
		return "chat"
	case AgentWebScrape:
		return "web_scrape"
	case AgentImages:
		return "images"
	default:
		return fmt.Sprintf("agent(%d)", int(k))
	}
}

// ParseAgentKind is the inverse of String.
func ParseAgentKind(s string) (AgentKind, bool) {
	for _, k := range AgentKinds {
		if k.String() == s {
			return k, true
		}
	}
	return AgentChat, false
}

// Agent is the user-facing profile of an agent kind.
type Agent struct {
	Kind         AgentKind `json:"kind"`
	Name         string    `json:"name"`
	Summary      string    `json:"summary"`
	SystemPrompt string    `json:"system_prompt"`
	Tools        []string  `json:"tools,omitempty"`
}

// Implement the list.Item interface
func (a *Agent) FilterValue() string {
	return a.Name
}

func (a *Agent) Title() string {
	return a.Name
}

func (a *Agent) Description() string {
	if len(a.Tools) == 0 {
		return a.Summary
	}
	return fmt.Sprintf("%s | Tools: %d", a.Summary, len(a.Tools))
}
