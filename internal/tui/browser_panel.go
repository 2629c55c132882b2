package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/services"
)

// BrowserPanel lists the picked directories with their thumbnails and shows search results.
type BrowserPanel struct {
	state services.StateView
	bus   events.Emitter

	cursor    int
	search    textinput.Model
	searching bool
	query     string
	matches   []entities.ImageRef
	found     []entities.ImageRef
	source    entities.FoundImagesSource
	previews  map[string]string
}

func NewBrowserPanel(state services.StateView, bus events.Emitter) *BrowserPanel {
	search := textinput.New()
	search.Prompt = "Labels: "
	search.Placeholder = "cat, beach"

	return &BrowserPanel{
		state:    state,
		bus:      bus,
		search:   search,
		previews: make(map[string]string),
	}
}

func (p *BrowserPanel) Name() string {
	return "ui/browser"
}

func (p *BrowserPanel) Update(ev events.Event) {
	switch e := ev.(type) {
	case events.LabelSearchRequested:
		p.query = e.Query
		p.matches = services.SearchByLabels(p.state.Directories(), e.Query)
	case events.FoundImages:
		p.found = e.Images
		p.source = e.Source
	case events.FilesChanged:
		for _, path := range e.Removed {
			delete(p.previews, path)
		}
	case events.DirectoryRemoved:
		for path := range p.previews {
			if path == e.Path || strings.HasPrefix(path, e.Path+string(filepath.Separator)) {
				delete(p.previews, path)
			}
		}
		p.cursor = min(p.cursor, max(len(p.state.Directories())-1, 0))
	case events.ImageLabeled:
		if p.query != "" {
			p.matches = services.SearchByLabels(p.state.Directories(), p.query)
		}
	}
}

// UpdateRender turns decoded thumbnails into terminal previews.
func (p *BrowserPanel) UpdateRender(ev events.Event, rc services.RenderContext) {
	if e, ok := ev.(events.ThumbnailsReady); ok {
		for _, thumb := range e.Thumbnails {
			p.previews[thumb.Path] = rc.Preview(thumb)
		}
	}
}

func (p *BrowserPanel) Focus() tea.Cmd {
	return nil
}

func (p *BrowserPanel) Blur() {
	p.searching = false
	p.search.Blur()
}

func (p *BrowserPanel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if p.searching {
		switch msg.String() {
		case "enter":
			p.bus.Send(events.LabelSearchRequested{Query: p.search.Value()})
			p.searching = false
			p.search.Blur()
			return nil
		case "esc":
			p.searching = false
			p.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		return cmd
	}

	dirs := p.state.Directories()
	switch msg.String() {
	case "up", "k":
		p.cursor = max(p.cursor-1, 0)
	case "down", "j":
		p.cursor = min(p.cursor+1, max(len(dirs)-1, 0))
	case "x", "delete":
		if p.cursor < len(dirs) {
			p.bus.Send(events.DirectoryRemoved{Path: dirs[p.cursor].Path})
		}
	case "/":
		p.searching = true
		return p.search.Focus()
	case "esc":
		p.query = ""
		p.matches = nil
		p.search.Reset()
	}
	return nil
}

func (p *BrowserPanel) View(width, height int, focused bool) string {
	inner := max(width-2, 1)
	p.search.Width = max(inner-10, 5)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Directories") + "\n")

	dirs := p.state.Directories()
	if len(dirs) == 0 {
		sb.WriteString(dimStyle.Render("Add a directory in the top bar") + "\n")
	}
	for i, d := range dirs {
		marker := "  "
		if i == p.cursor {
			marker = "> "
		}
		sb.WriteString(fmt.Sprintf("%s%s  %s\n", marker, d.Path,
			dimStyle.Render(fmt.Sprintf("%d files, %d labeled", len(d.Files), d.LabeledCount()))))
	}

	if p.cursor < len(dirs) {
		sb.WriteString(p.thumbnailRow(dirs[p.cursor], inner) + "\n")
	}

	sb.WriteString(p.search.View() + "\n")
	if p.query != "" {
		sb.WriteString(titleStyle.Render(fmt.Sprintf("Found (%s) %q: %d", entities.FoundByLabels, p.query, len(p.matches))) + "\n")
		sb.WriteString(listRefs(p.matches, 8))
	}
	if len(p.found) > 0 {
		sb.WriteString(titleStyle.Render(fmt.Sprintf("Found (%s): %d", p.source, len(p.found))) + "\n")
		sb.WriteString(listRefs(p.found, 8))
		sb.WriteString(p.previewRow(p.found, inner) + "\n")
	}

	return box(sb.String(), width, height, focused)
}

func (p *BrowserPanel) thumbnailRow(dir entities.Directory, width int) string {
	refs := make([]entities.ImageRef, 0, len(dir.Files))
	for _, f := range dir.Files {
		refs = append(refs, f.Ref())
	}
	return p.previewRow(refs, width)
}

// previewRow lays out as many previews as fit side by side.
func (p *BrowserPanel) previewRow(refs []entities.ImageRef, width int) string {
	fit := max(width/(previewCols+1), 1)
	var cells []string
	shown := 0
	for _, ref := range refs {
		if shown == fit {
			break
		}
		if preview, ok := p.previews[ref.Path]; ok {
			cells = append(cells, preview, " ")
			shown++
		}
	}
	if len(cells) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func listRefs(refs []entities.ImageRef, limit int) string {
	var sb strings.Builder
	for i, ref := range refs {
		if i == limit {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(refs)-limit)) + "\n")
			break
		}
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", ref.Name, ref.Path))
	}
	return sb.String()
}
