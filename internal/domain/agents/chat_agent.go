package agents

import (
	"context"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"
	"github.com/drujensen/deskimager/internal/domain/interfaces"
	"github.com/drujensen/deskimager/internal/domain/services"

	"go.uber.org/zap"
)

// ChatAgent forwards the conversation to the bound model and reports the reply. With tools
// it becomes the web scrape agent.
type ChatAgent struct {
	*Binding
	spawner services.Spawner
	tools   []entities.Tool
}

func NewChatAgent(kind entities.AgentKind, state services.StateView, factory interfaces.InferenceClientFactory, bus events.Emitter, spawner services.Spawner, tools []entities.Tool, logger *zap.Logger) *ChatAgent {
	return &ChatAgent{
		Binding: NewBinding(kind, state, factory, bus, logger),
		spawner: spawner,
		tools:   tools,
	}
}

func (a *ChatAgent) Name() string {
	return "agent/" + a.kind.String()
}

func (a *ChatAgent) Update(ev events.Event) {
	a.HandleLifecycle(ev)

	if e, ok := ev.(events.UserMessageSent); ok && a.Active() {
		a.spawner.Spawn(a.chatTask(e.Message))
	}
}

func (a *ChatAgent) chatTask(user *entities.Message) services.Task {
	req := a.snapshot()
	messages := a.Conversation(user)
	tools := a.tools
	logger := a.logger

	return services.Task{Name: "chat/" + req.kind.String(), Run: func(ctx context.Context, emit events.Emitter) {
		reply, err := req.client.Chat(ctx, req.model, messages, tools, nil)
		if err != nil {
			logger.Error("Chat request failed", zap.String("model", req.model), zap.Error(err))
			emit.Send(events.Diagnostic{Source: "chat/" + req.kind.String(), Message: err.Error()})
			return
		}
		emit.Send(events.ChatResponse{Agent: req.kind, Epoch: req.epoch, Request: user, Reply: reply})
	}}
}
