// Package listeners reacts to domain events after their transaction commits.
package listeners

import (
	"context"
	"fmt"

	"github.com/krishi360/krishi/app/events"
	"github.com/krishi360/krishi/pkg/event"
)

// Notifier stores in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, userIDs []uint, title, message, kind string) error
}

// RegisterNotifications turns order and consultation events into
// notifications for the people involved.
func RegisterNotifications(bus *event.Bus, n Notifier) {
	onOrder := func(fn func(ctx context.Context, o events.OrderEvent) error) event.Listener {
		return func(ctx context.Context, e event.Event) error {
			if o, ok := e.Payload.(events.OrderEvent); ok {
				return fn(ctx, o)
			}
			return nil
		}
	}
	onConsultation := func(fn func(ctx context.Context, c events.ConsultationEvent) error) event.Listener {
		return func(ctx context.Context, e event.Event) error {
			if c, ok := e.Payload.(events.ConsultationEvent); ok {
				return fn(ctx, c)
			}
			return nil
		}
	}
	toFarmer := func(title, format string) event.Listener {
		return onConsultation(func(ctx context.Context, c events.ConsultationEvent) error {
			return n.Notify(ctx, []uint{c.FarmerID}, title, fmt.Sprintf(format, c.Title), "consultation")
		})
	}

	bus.Listen(events.OrderPlaced, onOrder(func(ctx context.Context, o events.OrderEvent) error {
		if err := n.Notify(ctx, []uint{o.BuyerID}, "Order placed",
			fmt.Sprintf("Your order %s has been placed.", o.OrderNumber), "order"); err != nil {
			return err
		}
		return n.Notify(ctx, o.FarmerIDs, "New order",
			fmt.Sprintf("Order %s includes your crops.", o.OrderNumber), "order")
	}))

	bus.Listen(events.OrderCancelled, onOrder(func(ctx context.Context, o events.OrderEvent) error {
		if err := n.Notify(ctx, []uint{o.BuyerID}, "Order cancelled",
			fmt.Sprintf("Order %s has been cancelled.", o.OrderNumber), "order"); err != nil {
			return err
		}
		if len(o.FarmerIDs) == 0 {
			return nil
		}
		return n.Notify(ctx, o.FarmerIDs, "Order cancelled",
			fmt.Sprintf("Order %s was cancelled and its quantities are back in stock.", o.OrderNumber), "order")
	}))

	bus.Listen(events.OrderStatusChanged, onOrder(func(ctx context.Context, o events.OrderEvent) error {
		return n.Notify(ctx, []uint{o.BuyerID}, "Order status updated",
			fmt.Sprintf("Order %s is now %s.", o.OrderNumber, o.Status), "order")
	}))

	bus.Listen(events.ConsultationClaimed, toFarmer("Consultation accepted", "A consultant is now working on %q."))
	bus.Listen(events.ConsultationAssigned, toFarmer("Consultation assigned", "A consultant has been assigned to %q."))
	bus.Listen(events.ConsultationResponded, toFarmer("Consultation answered", "Your consultation %q has a response."))

	bus.Listen(events.ConsultationRated, onConsultation(func(ctx context.Context, c events.ConsultationEvent) error {
		if c.ConsultantID == nil || c.Rating == nil {
			return nil
		}
		return n.Notify(ctx, []uint{*c.ConsultantID}, "New rating",
			fmt.Sprintf("%q was rated %d/5.", c.Title, *c.Rating), "consultation")
	}))
}
