package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/services"
	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// FrameInterval is how often the bus is drained.
const FrameInterval = 50 * time.Millisecond

// Panel is a bus component that also owns a region of the screen.
type Panel interface {
	services.Component
	Focus() tea.Cmd
	Blur()
	HandleKey(msg tea.KeyMsg) tea.Cmd
	View(width, height int, focused bool) string
}

// Drainer processes the events queued since the last frame.
type Drainer interface {
	Drain() int
}

type renderContext struct {
	width  int
	height int
}

func (r *renderContext) Size() (int, int) {
	return r.width, r.height
}

func (r *renderContext) Preview(thumb entities.Thumbnail) string {
	return RenderPreview(thumb.Image, previewCols, previewRows)
}

// App is the root bubbletea model. Every frame it drains the bus on the UI goroutine,
// so panels and state are only touched from here.
type App struct {
	dispatcher Drainer
	logger     *zap.Logger

	topBar   *TopBar
	agents   *AgentsPanel
	chat     *ChatPanel
	browser  *BrowserPanel
	labeling *LabelingPanel

	panels   []Panel
	focus    int
	help     HelpView
	showHelp bool
	render   *renderContext
	width    int
	height   int
}

func NewApp(dispatcher Drainer, state services.StateView, bus events.Emitter, agents []entities.Agent, logger *zap.Logger) *App {
	a := &App{
		dispatcher: dispatcher,
		logger:     logger,
		topBar:     NewTopBar(state, bus),
		agents:     NewAgentsPanel(agents, state, bus),
		chat:       NewChatPanel(state, bus),
		browser:    NewBrowserPanel(state, bus),
		labeling:   NewLabelingPanel(bus),
		help:       NewHelpView(),
		render:     &renderContext{},
		focus:      2,
	}
	a.panels = []Panel{a.topBar, a.agents, a.chat, a.browser, a.labeling}
	return a
}

// Components returns the panels in dispatch order.
func (a *App) Components() []services.Component {
	components := make([]services.Component, len(a.panels))
	for i, p := range a.panels {
		components[i] = p
	}
	return components
}

func (a *App) RenderContext() services.RenderContext {
	return a.render
}

func frame() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (a *App) loadTokenizer() tea.Msg {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		a.logger.Debug("Tokenizer unavailable, estimating tokens from length", zap.Error(err))
		return nil
	}
	return tokenizerMsg{enc: enc}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(frame(), a.panels[a.focus].Focus(), a.loadTokenizer)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case frameMsg:
		a.dispatcher.Drain()
		return a, frame()

	case tokenizerMsg:
		a.chat.SetTokenizer(m.enc)
		return a, nil

	case tea.WindowSizeMsg:
		a.width = m.Width
		a.height = m.Height
		a.render.width = m.Width
		a.render.height = m.Height
		a.help.SetSize(m.Width, m.Height)
		return a, nil

	case tea.KeyMsg:
		switch m.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "f1":
			a.showHelp = !a.showHelp
			return a, nil
		case "esc":
			if a.showHelp {
				a.showHelp = false
				return a, nil
			}
		case "tab":
			return a, a.moveFocus(1)
		case "shift+tab":
			return a, a.moveFocus(-1)
		}
		if a.showHelp {
			return a, nil
		}
		return a, a.panels[a.focus].HandleKey(m)
	}
	return a, nil
}

func (a *App) moveFocus(step int) tea.Cmd {
	a.panels[a.focus].Blur()
	a.focus = (a.focus + step + len(a.panels)) % len(a.panels)
	return a.panels[a.focus].Focus()
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return ""
	}
	if a.showHelp {
		return a.help.View()
	}

	const topHeight, labelHeight = 4, 6
	leftWidth := max(a.width/4, 28)
	rightWidth := max(a.width*3/10, 30)
	centerWidth := max(a.width-leftWidth-rightWidth, 20)
	bodyHeight := max(a.height-topHeight, labelHeight+6)

	top := a.topBar.View(a.width, topHeight, a.focus == 0)
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.agents.View(leftWidth, bodyHeight-labelHeight, a.focus == 1),
		a.labeling.View(leftWidth, labelHeight, a.focus == 4),
	)
	center := a.chat.View(centerWidth, bodyHeight, a.focus == 2)
	right := a.browser.View(rightWidth, bodyHeight, a.focus == 3)

	return lipgloss.JoinVertical(lipgloss.Left, top, lipgloss.JoinHorizontal(lipgloss.Top, left, center, right))
}
