package listeners

import (
	"context"
	"time"

	"github.com/krishi360/krishi/pkg/event"
	"github.com/krishi360/krishi/pkg/metrics"
)

// JSONPublisher is satisfied by *broker.Publisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// RegisterForwarder sends every event to the message broker, routed by the
// event name.
func RegisterForwarder(bus *event.Bus, pub JSONPublisher) {
	bus.Listen(event.Wildcard, func(ctx context.Context, e event.Event) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := pub.PublishJSON(ctx, e.Name, e); err != nil {
			metrics.EventsPublished.WithLabelValues(e.Name, "failed").Inc()
			return err
		}
		metrics.EventsPublished.WithLabelValues(e.Name, "forwarded").Inc()
		return nil
	})
}
