package outbox

import (
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Dispatcher маршрутизирует outbox-события между publishers по типу события.
// Событие без явного маршрута уходит в fallback.
type Dispatcher struct {
	routes   map[string]domain.OutboxPublisher
	fallback domain.OutboxPublisher
}

// NewDispatcher создаёт dispatcher с fallback-паблишером.
func NewDispatcher(fallback domain.OutboxPublisher) *Dispatcher {
	return &Dispatcher{
		routes:   make(map[string]domain.OutboxPublisher),
		fallback: fallback,
	}
}

// Route привязывает тип события к publisher.
func (d *Dispatcher) Route(eventType string, publisher domain.OutboxPublisher) *Dispatcher {
	d.routes[eventType] = publisher
	return d
}

func (d *Dispatcher) Publish(event domain.OutboxMessage) error {
	if publisher, ok := d.routes[event.EventType]; ok && publisher != nil {
		return publisher.Publish(event)
	}
	if d.fallback != nil {
		return d.fallback.Publish(event)
	}
	return fmt.Errorf("no publisher for event type %q", event.EventType)
}

var _ domain.OutboxPublisher = (*Dispatcher)(nil)
