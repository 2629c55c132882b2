package services

import (
	"testing"

	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type traceComponent struct {
	name  string
	state *AppState
	trace *[]string
	panic bool
}

func (c *traceComponent) Name() string { return c.name }

func (c *traceComponent) Update(ev events.Event) {
	if e, ok := ev.(events.AgentSelected); ok {
		// the reducer has already run
		if c.state.ActiveAgent() == e.Agent {
			*c.trace = append(*c.trace, c.name+":update")
		}
	}
	if c.panic {
		panic("boom")
	}
}

func (c *traceComponent) UpdateRender(ev events.Event, rc RenderContext) {
	*c.trace = append(*c.trace, c.name+":render")
}

type fakeRender struct{}

func (fakeRender) Size() (int, int) { return 80, 24 }
func (fakeRender) Preview(entities.Thumbnail) string { return "" }

func TestDispatcher_FanOutOrder(t *testing.T) {
	bus := events.NewBus()
	state := newTestState()
	d := NewDispatcher(bus, state, &collectingSpawner{}, zap.NewNop())
	d.SetRenderContext(fakeRender{})

	var trace []string
	d.Register(
		&traceComponent{name: "a", state: state, trace: &trace},
		&traceComponent{name: "b", state: state, trace: &trace},
	)

	bus.Send(events.AgentSelected{Agent: entities.AgentImages})
	assert.Equal(t, 1, d.Drain())

	assert.Equal(t, []string{"a:update", "b:update", "a:render", "b:render"}, trace)
}

func TestDispatcher_PanickingComponentDoesNotStopDrain(t *testing.T) {
	bus := events.NewBus()
	state := newTestState()
	d := NewDispatcher(bus, state, &collectingSpawner{}, zap.NewNop())

	var trace []string
	d.Register(
		&traceComponent{name: "bad", state: state, trace: &trace, panic: true},
		&traceComponent{name: "good", state: state, trace: &trace},
	)

	bus.Send(events.AgentSelected{Agent: entities.AgentWebScrape})
	bus.Send(events.AgentSelected{Agent: entities.AgentImages})
	assert.Equal(t, 2, d.Drain())

	assert.Equal(t, []string{"bad:update", "good:update", "bad:update", "good:update"}, trace)
	assert.Equal(t, entities.AgentImages, state.ActiveAgent())
}

func TestDispatcher_SpawnsReducerTasks(t *testing.T) {
	bus := events.NewBus()
	spawner := &collectingSpawner{}
	d := NewDispatcher(bus, newTestState(), spawner, zap.NewNop())

	bus.Send(events.ProbeRequested{})
	d.Drain()

	assert.Equal(t, []string{"probe"}, taskNames(spawner.tasks))
}
