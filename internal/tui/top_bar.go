package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/services"
	"github.com/dustin/go-humanize"
)

// TopBar shows the connection state and takes the server URL and new directories.
type TopBar struct {
	state services.StateView
	bus   events.Emitter

	url     textinput.Model
	dir     textinput.Model
	editing int // 0 url, 1 directory
	status  string
}

func NewTopBar(state services.StateView, bus events.Emitter) *TopBar {
	url := textinput.New()
	url.Prompt = "Server: "
	url.Placeholder = "http://127.0.0.1:11434"
	url.SetValue(state.ServerURL())

	dir := textinput.New()
	dir.Prompt = "Add directory: "
	dir.Placeholder = "~/Pictures"

	return &TopBar{state: state, bus: bus, url: url, dir: dir}
}

func (b *TopBar) Name() string {
	return "ui/top-bar"
}

func (b *TopBar) Update(ev events.Event) {
	switch e := ev.(type) {
	case events.ServerURLChanged:
		if !b.url.Focused() {
			b.url.SetValue(e.URL)
		}
	case events.DirectoryScanned:
		b.status = fmt.Sprintf("Scanned %s (%d images)", e.Path, len(e.Files))
	case events.Diagnostic:
		if e.Source == "directories" {
			b.status = e.Message
		}
	}
}

func (b *TopBar) Focus() tea.Cmd {
	if b.editing == 0 {
		return b.url.Focus()
	}
	return b.dir.Focus()
}

func (b *TopBar) Blur() {
	b.url.Blur()
	b.dir.Blur()
}

func (b *TopBar) HandleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "down":
		b.Blur()
		b.editing = 1 - b.editing
		return b.Focus()
	case "ctrl+r":
		b.bus.Send(events.ModelsRefreshRequested{})
		return nil
	case "enter":
		if b.editing == 0 {
			value := strings.TrimSpace(b.url.Value())
			if value != "" && value != b.state.ServerURL() {
				b.bus.Send(events.ServerURLChanged{URL: value})
			}
			return nil
		}
		value := strings.TrimSpace(b.dir.Value())
		if value != "" {
			b.bus.Send(events.DirectoryPicked{Path: value})
			b.dir.Reset()
			b.status = "Scanning " + value + "..."
		}
		return nil
	}

	var cmd tea.Cmd
	if b.editing == 0 {
		b.url, cmd = b.url.Update(msg)
	} else {
		b.dir, cmd = b.dir.Update(msg)
	}
	return cmd
}

func (b *TopBar) indicator() string {
	status := b.state.Status()
	switch status {
	case services.StatusReachable:
		return okStyle.Render("● " + status.String())
	case services.StatusUnreachable:
		return errStyle.Render("● " + status.String())
	default:
		return dimStyle.Render("● " + status.String())
	}
}

func (b *TopBar) modelSummary() string {
	models := b.state.Models()
	if len(models) == 0 {
		return dimStyle.Render("no models")
	}
	var total uint64
	for _, m := range models {
		if m.Size > 0 {
			total += uint64(m.Size)
		}
	}
	return fmt.Sprintf("%d models, %d vision, %s", len(models), len(b.state.VisionModels()), humanize.Bytes(total))
}

func (b *TopBar) View(width, height int, focused bool) string {
	b.url.Width = max(width/2-24, 10)
	b.dir.Width = max(width/2-24, 10)

	line1 := b.indicator() + "  " + b.url.View() + "  " + b.modelSummary()
	line2 := b.dir.View()
	if b.status != "" {
		line2 += "  " + dimStyle.Render(b.status)
	}
	return box(line1+"\n"+line2, width, height, focused)
}
