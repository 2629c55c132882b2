package services

import (
	"github.com/drujensen/deskimager/internal/domain/entities"
	"github.com/drujensen/deskimager/internal/domain/events"

	"go.uber.org/zap"
)

// Component reacts to every event drained from the bus.
type Component interface {
	Name() string
	Update(ev events.Event)
}

// RenderContext gives components access to rendering resources during a frame.
type RenderContext interface {
	Size() (width, height int)
	Preview(thumb entities.Thumbnail) string
}

// RenderAware components get a second look at each event with the render context.
type RenderAware interface {
	UpdateRender(ev events.Event, rc RenderContext)
}

// Dispatcher drains the bus on the UI goroutine. For each event it applies the state
// reducers, then calls every component in registration order, then every render hook.
type Dispatcher struct {
	bus        *events.Bus
	state      *AppState
	spawner    Spawner
	components []Component
	render     RenderContext
	logger     *zap.Logger
}

func NewDispatcher(bus *events.Bus, state *AppState, spawner Spawner, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		bus:     bus,
		state:   state,
		spawner: spawner,
		logger:  logger,
	}
}

// Register appends components. Registration order is dispatch order.
func (d *Dispatcher) Register(components ...Component) {
	d.components = append(d.components, components...)
}

func (d *Dispatcher) SetRenderContext(rc RenderContext) {
	d.render = rc
}

// Drain processes everything queued on the bus and returns how many events it handled.
func (d *Dispatcher) Drain() int {
	drained := d.bus.Drain()
	for _, ev := range drained {
		d.Dispatch(ev)
	}
	return len(drained)
}

func (d *Dispatcher) Dispatch(ev events.Event) {
	if diag, ok := ev.(events.Diagnostic); ok {
		d.logger.Warn("Diagnostic", zap.String("source", diag.Source), zap.String("message", diag.Message))
	}

	for _, task := range d.state.Apply(ev) {
		d.spawner.Spawn(task)
	}

	for _, c := range d.components {
		d.safely(c.Name(), func() { c.Update(events.Clone(ev)) })
	}

	if d.render == nil {
		return
	}
	for _, c := range d.components {
		if ra, ok := c.(RenderAware); ok {
			d.safely(c.Name(), func() { ra.UpdateRender(events.Clone(ev), d.render) })
		}
	}
}

func (d *Dispatcher) safely(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("Component panicked while handling event", zap.String("component", name), zap.Any("panic", rec))
		}
	}()
	fn()
}
