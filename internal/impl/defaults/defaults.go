package defaults

import (
	"github.com/drujensen/deskimager/internal/domain/entities"
)

const chatPrompt = "You are a personal assistant. Answer every question without hesitation. Keep your answers concise and informative."

const webScrapePrompt = `## Role
You answer questions using Markdown content extracted from web pages. Search the web or
scrape a URL with your tools when the user asks about something online.

## Guidelines
- Find the sections of the Markdown that answer the question and give a direct answer.
- Summarize long content but keep the important details.
- Format answers with Markdown: **bold** key facts, ` + "`code`" + ` for technical terms, > quotes for excerpts.
- Link back to the source page when it helps.
- If the content does not contain the answer, say so.`

const imagesPrompt = `You are a helpful desktop assistant mainly used for searching or listing images.
If you do not find any images at the given path, answer only: I didn't find any images.
When a tool returns images, answer only with the list of those images in the format '- name of image file: absolute path'.`

// DefaultAgents returns the built-in agent profiles in display order.
func DefaultAgents() []entities.Agent {
	return []entities.Agent{
		{
			Kind:         entities.AgentChat,
			Name:         "Chat",
			Summary:      "Simple chat agent",
			SystemPrompt: chatPrompt,
		},
		{
			Kind:         entities.AgentWebScrape,
			Name:         "Web Text Scraper",
			Summary:      "Searches the web and answers from pages converted to Markdown",
			SystemPrompt: webScrapePrompt,
			Tools:        []string{"web_search", "scrape_url", "calculator"},
		},
		{
			Kind:         entities.AgentImages,
			Name:         "Images",
			Summary:      "Searching images on this computer",
			SystemPrompt: imagesPrompt,
			Tools:        []string{"list_images", "search_images", "path_contains"},
		},
	}
}

// SystemPrompts returns the default system prompt of every agent kind.
func SystemPrompts() map[entities.AgentKind]string {
	prompts := make(map[entities.AgentKind]string)
	for _, a := range DefaultAgents() {
		prompts[a.Kind] = a.SystemPrompt
	}
	return prompts
}
