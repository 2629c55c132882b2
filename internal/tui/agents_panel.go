package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/services"
)

// AgentsPanel lists the agents, lets the user activate one, pick its model and edit its
// system prompt.
type AgentsPanel struct {
	state  services.StateView
	bus    events.Emitter
	agents []entities.Agent

	list    list.Model
	prompt  textarea.Model
	editing bool
	bound   map[entities.AgentKind]string
}

func NewAgentsPanel(agents []entities.Agent, state services.StateView, bus events.Emitter) *AgentsPanel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("6")).Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("7"))
	delegate.SetHeight(2)

	items := make([]list.Item, len(agents))
	for i := range agents {
		items[i] = &agents[i]
	}

	l := list.New(items, delegate, 30, 10)
	l.Title = "Agents"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.Select(int(state.ActiveAgent()))

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Placeholder = "System prompt"

	return &AgentsPanel{
		state:  state,
		bus:    bus,
		agents: agents,
		list:   l,
		prompt: ta,
		bound:  make(map[entities.AgentKind]string),
	}
}

func (p *AgentsPanel) Name() string {
	return "ui/agents"
}

func (p *AgentsPanel) Update(ev events.Event) {
	switch e := ev.(type) {
	case events.AgentSelected:
		p.list.Select(int(e.Agent))
	case events.ModelBound:
		p.bound[e.Agent] = e.Model
	}
}

func (p *AgentsPanel) Focus() tea.Cmd {
	return nil
}

func (p *AgentsPanel) Blur() {
	if p.editing {
		p.editing = false
		p.prompt.Blur()
	}
}

func (p *AgentsPanel) highlighted() (entities.AgentKind, bool) {
	agent, ok := p.list.SelectedItem().(*entities.Agent)
	if !ok {
		return entities.AgentChat, false
	}
	return agent.Kind, true
}

func (p *AgentsPanel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if p.editing {
		switch msg.String() {
		case "esc":
			p.editing = false
			p.prompt.Blur()
			return nil
		case "ctrl+s":
			if kind, ok := p.highlighted(); ok {
				p.bus.Send(events.SystemPromptChanged{Agent: kind, Prompt: strings.TrimSpace(p.prompt.Value())})
			}
			p.editing = false
			p.prompt.Blur()
			return nil
		}
		var cmd tea.Cmd
		p.prompt, cmd = p.prompt.Update(msg)
		return cmd
	}

	kind, ok := p.highlighted()
	switch msg.String() {
	case "enter":
		if ok {
			p.bus.Send(events.AgentSelected{Agent: kind})
		}
		return nil
	case "m", "M":
		if ok {
			step := 1
			if msg.String() == "M" {
				step = -1
			}
			if next := p.cycleModel(kind, step); next != "" {
				p.bus.Send(events.AgentModelSelected{Agent: kind, Model: next})
			}
		}
		return nil
	case "e":
		if ok {
			p.editing = true
			p.prompt.SetValue(p.state.SystemPrompt(kind))
			return p.prompt.Focus()
		}
		return nil
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

// cycleModel returns the model step places away from the agent's active one.
func (p *AgentsPanel) cycleModel(kind entities.AgentKind, step int) string {
	names := entities.ModelNames(p.state.Models())
	if len(names) == 0 {
		return ""
	}
	current := p.state.ActiveModel(kind)
	idx := -1
	for i, n := range names {
		if n == current {
			idx = i
			break
		}
	}
	next := ((idx+step)%len(names) + len(names)) % len(names)
	return names[next]
}

func (p *AgentsPanel) modelLine(kind entities.AgentKind) string {
	name := p.state.ActiveModel(kind)
	if name == "" {
		return dimStyle.Render("no model")
	}
	for _, m := range p.state.Models() {
		if m.Name == name {
			return m.Name + " " + dimStyle.Render(m.Description())
		}
	}
	return name
}

func (p *AgentsPanel) View(width, height int, focused bool) string {
	inner := max(width-2, 0)
	p.prompt.SetWidth(inner)
	p.prompt.SetHeight(max(height-8, 3))

	var sb strings.Builder
	active := p.state.ActiveAgent()

	if p.editing {
		kind, _ := p.highlighted()
		sb.WriteString(titleStyle.Render("System prompt: "+kind.String()) + "\n")
		sb.WriteString(p.prompt.View() + "\n")
		sb.WriteString(dimStyle.Render("Ctrl+S save, Esc cancel"))
		return box(sb.String(), width, height, focused)
	}

	p.list.SetSize(inner, max(height-6, 4))
	sb.WriteString(p.list.View() + "\n")
	sb.WriteString(activeMark + " " + agentName(p.agents, active) + "\n")
	sb.WriteString("model: " + p.modelLine(active))
	if bound := p.bound[active]; bound != "" && bound != p.state.ActiveModel(active) {
		sb.WriteString(dimStyle.Render(" (bound " + bound + ")"))
	}
	sb.WriteString("\n" + dimStyle.Render("Enter activate, m/M model, e prompt"))
	return box(sb.String(), width, height, focused)
}

func agentName(agents []entities.Agent, kind entities.AgentKind) string {
	for _, a := range agents {
		if a.Kind == kind {
			return a.Name
		}
	}
	return kind.String()
}
