package events

import (
	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/kelindar/event"
)

const ToolCallEventType uint32 = 1

// ToolCallEventData is published on the process-wide dispatcher each time the inference
// client executes a tool.
type ToolCallEventData struct {
	Event *entities.ToolCallEvent
}

func (t ToolCallEventData) Type() uint32 {
	return ToolCallEventType
}

func PublishToolCallEvent(call *entities.ToolCallEvent) {
	event.Emit(ToolCallEventData{Event: call})
}

// SubscribeToToolCallEvents registers handler and returns the unsubscribe func.
// Handlers run on the dispatcher's goroutine, not the caller's.
func SubscribeToToolCallEvents(handler func(data ToolCallEventData)) func() {
	return event.On(handler)
}

// ForwardToolCalls relays published tool calls onto bus as ToolCalled until the
// returned func is called.
func ForwardToolCalls(bus Emitter) func() {
	return SubscribeToToolCallEvents(func(data ToolCallEventData) {
		if data.Event == nil {
			return
		}
		bus.Send(ToolCalled{Call: *data.Event})
	})
}
