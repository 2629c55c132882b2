package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/services"
	"github.com/pkoukk/tiktoken-go"
)

type chatEntry struct {
	role    string
	content string
}

// ChatPanel is the conversation with the active agent.
type ChatPanel struct {
	state services.StateView
	bus   events.Emitter

	entries  []chatEntry
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Spinner
	typing   bool
	epochs   map[entities.AgentKind]uint64
	started  time.Time
	checked  int
	enc      *tiktoken.Tiktoken
	tokens   int
	dirty    bool
}

func NewChatPanel(state services.StateView, bus events.Emitter) *ChatPanel {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Prompt = "┃ "
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return &ChatPanel{
		state:    state,
		bus:      bus,
		viewport: viewport.New(30, 5),
		textarea: ta,
		spinner:  spinner.Dot,
		epochs:   make(map[entities.AgentKind]uint64),
	}
}

func (c *ChatPanel) Name() string {
	return "ui/chat"
}

func (c *ChatPanel) SetTokenizer(enc *tiktoken.Tiktoken) {
	c.enc = enc
	c.dirty = true
}

func (c *ChatPanel) add(role, content string) {
	c.entries = append(c.entries, chatEntry{role: role, content: content})
	c.dirty = true
}

func (c *ChatPanel) clear() {
	c.entries = nil
	c.typing = false
	c.dirty = true
}

func (c *ChatPanel) Update(ev events.Event) {
	switch e := ev.(type) {
	case events.AgentSelected:
		c.clear()
	case events.ModelBound:
		c.epochs[e.Agent] = e.Epoch
		if e.Agent == c.state.ActiveAgent() {
			c.clear()
		}
	case events.UserMessageSent:
		c.add(entities.RoleUser, e.Message.Content)
		c.typing = true
		c.started = time.Now()
		c.checked = 0
	case events.ChatResponse:
		// replies to a previous binding were already dropped from the history
		if e.Agent != c.state.ActiveAgent() || e.Epoch != c.epochs[e.Agent] {
			return
		}
		c.add(entities.RoleAssistant, e.Reply.Content)
		c.typing = false
	case events.ChatSubResponse:
		if e.Agent == c.state.ActiveAgent() {
			c.add(entities.RoleAssistant, e.Reply.Content)
		}
	case events.ToolCalled:
		line := fmt.Sprintf("%s(%s)", e.Call.ToolName, e.Call.Arguments)
		if e.Call.Error != "" {
			line += " failed: " + e.Call.Error
		}
		c.add(entities.RoleTool, line)
	case events.VisionChecked:
		c.checked++
	case events.FoundImages:
		c.typing = false
		c.add(entities.RoleSystem, fmt.Sprintf("Found %d images (%s)", len(e.Images), e.Source))
	}
}

func (c *ChatPanel) Focus() tea.Cmd {
	return c.textarea.Focus()
}

func (c *ChatPanel) Blur() {
	c.textarea.Blur()
}

func (c *ChatPanel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(c.textarea.Value())
		if input == "" {
			return nil
		}
		c.textarea.Reset()
		c.bus.Send(events.UserMessageSent{Message: entities.NewMessage(entities.RoleUser, input)})
		return nil
	case "pgup":
		c.viewport.HalfPageUp()
		return nil
	case "pgdown":
		c.viewport.HalfPageDown()
		return nil
	}
	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return cmd
}

// Tokens estimates the size of the visible conversation.
func (c *ChatPanel) Tokens() int {
	total := 0
	for _, e := range c.entries {
		if c.enc != nil {
			total += len(c.enc.Encode(e.content, nil, nil))
		} else {
			total += len(e.content) / 4
		}
	}
	return total
}

func (c *ChatPanel) render(width int) string {
	if len(c.entries) == 0 {
		return dimStyle.Render("How can I help you today?")
	}
	var sb strings.Builder
	for _, e := range c.entries {
		switch e.role {
		case entities.RoleUser:
			sb.WriteString(userStyle.Render("You: ") + e.content)
		case entities.RoleAssistant:
			sb.WriteString(asstStyle.Render("Assistant:") + "\n" + RenderMarkdown(e.content))
		case entities.RoleTool:
			sb.WriteString(toolStyle.Render("Tool: ") + e.content)
		default:
			sb.WriteString(dimStyle.Render(e.content))
		}
		sb.WriteString("\n\n")
	}
	return lipgloss.NewStyle().Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

func (c *ChatPanel) spinnerFrame() string {
	frames := c.spinner.Frames
	if len(frames) == 0 || c.spinner.FPS <= 0 {
		return "…"
	}
	i := int(time.Since(c.started)/c.spinner.FPS) % len(frames)
	return frames[i]
}

func (c *ChatPanel) View(width, height int, focused bool) string {
	inner := max(width-2, 1)
	vpHeight := max(height-2-c.textarea.Height()-2, 1)
	if c.viewport.Width != inner || c.viewport.Height != vpHeight {
		c.viewport.Width = inner
		c.viewport.Height = vpHeight
		c.dirty = true
	}
	c.textarea.SetWidth(inner)

	if c.dirty {
		c.viewport.SetContent(c.render(inner))
		c.viewport.GotoBottom()
		c.tokens = c.Tokens()
		c.dirty = false
	}

	status := dimStyle.Render(fmt.Sprintf("~%d tokens", c.tokens))
	if c.typing {
		elapsed := int(time.Since(c.started).Round(time.Second).Seconds())
		text := fmt.Sprintf(" Thinking... (%ds)", elapsed)
		if c.checked > 0 {
			text = fmt.Sprintf(" Checked %d images (%ds)", c.checked, elapsed)
		}
		status = c.spinnerFrame() + text + "  " + status
	}

	body := c.viewport.View() + "\n" + c.textarea.View() + "\n" + status
	return box(body, width, height, focused)
}
