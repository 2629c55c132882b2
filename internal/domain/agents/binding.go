package agents

import (
	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"
	"github.com/drujensen/deskimager/internal/domain/services"

	"go.uber.org/zap"
)

// Binding ties an agent to one model on one server, together with the conversation held
// with that model. It lives on the dispatch goroutine.
type Binding struct {
	kind    entities.AgentKind
	state   services.StateView
	factory interfaces.InferenceClientFactory
	emit    events.Emitter
	logger  *zap.Logger

	url     string
	model   string
	epoch   uint64
	client  interfaces.InferenceClient
	history []*entities.Message
}

func NewBinding(kind entities.AgentKind, state services.StateView, factory interfaces.InferenceClientFactory, emit events.Emitter, logger *zap.Logger) *Binding {
	return &Binding{
		kind:    kind,
		state:   state,
		factory: factory,
		emit:    emit,
		logger:  logger.With(zap.String("agent", kind.String())),
	}
}

func (b *Binding) Kind() entities.AgentKind {
	return b.kind
}

func (b *Binding) Model() string {
	return b.model
}

func (b *Binding) Epoch() uint64 {
	return b.epoch
}

func (b *Binding) Bound() bool {
	return b.client != nil
}

// Active reports whether this agent is the one the user talks to and has a model.
func (b *Binding) Active() bool {
	return b.state.ActiveAgent() == b.kind && b.Bound()
}

func (b *Binding) History() []*entities.Message {
	history := make([]*entities.Message, len(b.history))
	for i, m := range b.history {
		history[i] = m.Clone()
	}
	return history
}

func (b *Binding) ClearHistory() {
	b.history = nil
}

// Bind opens a fresh client for model and drops the history.
func (b *Binding) Bind(model string) {
	url := b.state.ServerURL()
	client, err := b.factory.NewClient(url)
	if err != nil {
		b.logger.Warn("Failed to open client", zap.String("url", url), zap.Error(err))
		b.Unbind()
		return
	}
	b.url = url
	b.model = model
	b.client = client
	b.history = nil
	b.epoch++
	b.logger.Info("Model bound", zap.String("model", model), zap.String("url", url))
	b.emit.Send(events.ModelBound{Agent: b.kind, Model: model, Epoch: b.epoch})
}

func (b *Binding) Unbind() {
	if b.client == nil && b.model == "" {
		return
	}
	b.url = ""
	b.model = ""
	b.client = nil
	b.history = nil
	b.epoch++
}

// Reconcile brings the binding in line with the shared state: inactive agents hold no
// connection, the active one is bound to its selected model on the current server.
func (b *Binding) Reconcile() {
	if b.state.ActiveAgent() != b.kind {
		b.Unbind()
		return
	}
	model := b.state.ActiveModel(b.kind)
	if model == "" {
		b.Unbind()
		return
	}
	if model != b.model || b.state.ServerURL() != b.url || b.client == nil {
		b.Bind(model)
	}
}

// HandleLifecycle applies the events every agent reacts to the same way.
func (b *Binding) HandleLifecycle(ev events.Event) {
	switch e := ev.(type) {
	case events.AgentSelected:
		// every selection starts a new conversation, even for the agent already active
		b.Unbind()
		b.Reconcile()
	case events.ModelsUpdated, events.AgentModelSelected, events.ServerURLChanged:
		b.Reconcile()
	case events.ChatResponse:
		b.Record(e)
	}
}

// Conversation assembles the system prompt, the history and the new user turn.
func (b *Binding) Conversation(user *entities.Message) []*entities.Message {
	var messages []*entities.Message
	if prompt := b.state.SystemPrompt(b.kind); prompt != "" {
		messages = append(messages, entities.NewMessage(entities.RoleSystem, prompt))
	}
	messages = append(messages, b.History()...)
	return append(messages, user.Clone())
}

// Record appends a completed exchange to the history when it came from the current binding.
func (b *Binding) Record(resp events.ChatResponse) bool {
	if resp.Agent != b.kind || resp.Epoch != b.epoch || resp.Request == nil || resp.Reply == nil {
		return false
	}
	b.history = append(b.history, resp.Request.Clone(), resp.Reply.Clone())
	return true
}

// request is the snapshot a background task needs to talk to the bound model.
type request struct {
	kind   entities.AgentKind
	client interfaces.InferenceClient
	model  string
	epoch  uint64
}

func (b *Binding) snapshot() request {
	return request{kind: b.kind, client: b.client, model: b.model, epoch: b.epoch}
}
