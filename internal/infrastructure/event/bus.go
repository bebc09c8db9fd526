package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/erp/channelsync/internal/domain/shared"
	"go.uber.org/zap"
)

// allEvents routes handlers that subscribe without event types
const allEvents = ""

// Dispatcher is the in-process event bus. Handlers run synchronously in
// subscription order; a failing or panicking handler is logged and skipped.
type Dispatcher struct {
	mu      sync.RWMutex
	routes  map[string][]shared.EventHandler
	logger  *zap.Logger
	stopped atomic.Bool
}

var _ shared.EventBus = (*Dispatcher)(nil)

// NewDispatcher creates an empty dispatcher
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{routes: make(map[string][]shared.EventHandler), logger: logger}
}

// Subscribe routes the handler's event types to it
func (d *Dispatcher) Subscribe(handler shared.EventHandler) {
	types := handler.EventTypes()
	if len(types) == 0 {
		types = []string{allEvents}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range types {
		d.routes[t] = append(d.routes[t], handler)
	}
}

func (d *Dispatcher) handlers(eventType string) []shared.EventHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	typed, all := d.routes[eventType], d.routes[allEvents]
	out := make([]shared.EventHandler, 0, len(typed)+len(all))
	return append(append(out, typed...), all...)
}

// Publish never fails: handler errors are logged. Events published after Stop
// are dropped.
func (d *Dispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if d.stopped.Load() {
		d.logger.Warn("Event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	for _, ev := range events {
		for _, h := range d.handlers(ev.EventType()) {
			if err := dispatch(ctx, h, ev); err != nil {
				d.logger.Error("Event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.String("order_id", ev.AggregateID().String()),
					zap.Error(err))
			}
		}
	}
	return nil
}

func dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

func (d *Dispatcher) Start(context.Context) error {
	d.stopped.Store(false)
	return nil
}

func (d *Dispatcher) Stop(context.Context) error {
	d.stopped.Store(true)
	return nil
}
