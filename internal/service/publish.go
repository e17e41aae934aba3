package service

import (
	"context"
	"log/slog"
)

// Routing keys of the events emitted after a successful write
const (
	EventOrderPlaced = "order.placed"
	EventOrderStatus = "order.status"
	EventMenuUpdated = "menu.updated"
	EventMenuRemoved = "menu.removed"
)

// Publisher delivers domain events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// OrderStatusEvent is the payload of EventOrderStatus
type OrderStatusEvent struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// MenuRemovedEvent is the payload of EventMenuRemoved
type MenuRemovedEvent struct {
	CategoryID int64 `json:"categoryId"`
	MenuID     int64 `json:"menuId"`
}

// publish sends an event after the write it describes has committed.
// Failures are logged only: the write already succeeded.
func publish(ctx context.Context, logger *slog.Logger, pub Publisher, routingKey string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "routing_key", routingKey, "error", err)
	}
}
