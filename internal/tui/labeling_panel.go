package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/drujensen/deskimager/internal/domain/events"
)

// LabelingPanel starts auto-labeling and tracks its progress.
type LabelingPanel struct {
	bus events.Emitter

	progress progress.Model
	running  bool
	total    int
	done     int
	labeled  int
	last     string
}

func NewLabelingPanel(bus events.Emitter) *LabelingPanel {
	return &LabelingPanel{
		bus:      bus,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (p *LabelingPanel) Name() string {
	return "ui/labeling"
}

func (p *LabelingPanel) Update(ev events.Event) {
	switch e := ev.(type) {
	case events.LabelingStarted:
		p.running = true
		p.total, p.done, p.labeled = 0, 0, 0
		p.last = ""
	case events.LabelingQueued:
		p.total = e.Total
	case events.ImageLabeled:
		p.done++
		p.last = fmt.Sprintf("%s: %s", filepath.Base(e.File), strings.Join(e.Labels, ", "))
	case events.LabelingFinished:
		p.running = false
		p.labeled = e.Labeled
	}
}

func (p *LabelingPanel) Focus() tea.Cmd {
	return nil
}

func (p *LabelingPanel) Blur() {}

func (p *LabelingPanel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "l":
		p.bus.Send(events.LabelingStarted{})
	}
	return nil
}

// Percent is the share of queued files that have been labeled.
func (p *LabelingPanel) Percent() float64 {
	if p.total == 0 {
		if p.running {
			return 0
		}
		return 1
	}
	return float64(p.done) / float64(p.total)
}

func (p *LabelingPanel) View(width, height int, focused bool) string {
	p.progress.Width = max(width-4, 10)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Labeling") + "\n")
	switch {
	case p.running:
		sb.WriteString(fmt.Sprintf("%d / %d images\n", p.done, p.total))
	case p.total > 0 || p.labeled > 0:
		sb.WriteString(fmt.Sprintf("Finished, %d labeled\n", p.labeled))
	default:
		sb.WriteString(dimStyle.Render("Press Enter to label new images") + "\n")
	}
	sb.WriteString(p.progress.ViewAs(p.Percent()) + "\n")
	if p.last != "" {
		sb.WriteString(dimStyle.Render(p.last))
	}
	return box(sb.String(), width, height, focused)
}
