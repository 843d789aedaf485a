package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"store-admin-service/internal/orders"
)

const (
	EventsExchange         = "store-admin.events"
	DashboardQueue         = "store-admin.dashboard"
	OrderEventsBinding     = "order.#"
	OrderStatusUpdatedRK   = "order.status.updated"
	OrderStatusMessageType = "order.status"
	dashboardQueueExpiry   = int32(time.Hour / time.Millisecond)
)

var ErrInvalidEvent = errors.New("invalid order event")

// OrderStatusChangedEvent is emitted after an admin changes an order status.
type OrderStatusChangedEvent struct {
	ID             string             `json:"id"`
	OrderID        int64              `json:"orderId"`
	PreviousStatus orders.OrderStatus `json:"previousStatus"`
	OrderStatus    orders.OrderStatus `json:"orderStatus"`
	ChangedAt      time.Time          `json:"changedAt"`
}

func NewOrderStatusChangedEvent(orderID int64, previous, next orders.OrderStatus, now time.Time) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		ID:             uuid.NewString(),
		OrderID:        orderID,
		PreviousStatus: previous,
		OrderStatus:    next,
		ChangedAt:      now.UTC(),
	}
}

// Broadcaster fans a typed message out to connected dashboards.
type Broadcaster interface {
	Broadcast(msgType string, data any)
}

// Publisher sends order events to the exchange; every service instance
// relays them to its own websocket clients.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, event OrderStatusChangedEvent) error {
	return p.client.PublishJSON(ctx, EventsExchange, OrderStatusUpdatedRK, event)
}

// LocalNotifier broadcasts directly when no broker is configured.
type LocalNotifier struct {
	Hub Broadcaster
}

func (n LocalNotifier) OrderStatusChanged(_ context.Context, event OrderStatusChangedEvent) error {
	n.Hub.Broadcast(OrderStatusMessageType, event)
	return nil
}

// DashboardQueueName is per instance so each process sees every event.
func DashboardQueueName(instance string) string {
	if instance == "" {
		return DashboardQueue
	}
	return DashboardQueue + "." + instance
}

// EnsureDashboardTopology declares the events exchange and the instance
// queue bound to every order event. Unused queues expire after an hour.
func EnsureDashboardTopology(qc *Client, instance string) (string, error) {
	if err := qc.EnsureExchange(EventsExchange); err != nil {
		return "", fmt.Errorf("declare exchange: %w", err)
	}
	name := DashboardQueueName(instance)
	if _, err := qc.EnsureQueueWithArgs(name, amqp.Table{"x-expires": dashboardQueueExpiry}); err != nil {
		return "", fmt.Errorf("declare queue: %w", err)
	}
	if err := qc.BindQueue(name, EventsExchange, OrderEventsBinding); err != nil {
		return "", fmt.Errorf("bind queue: %w", err)
	}
	return name, nil
}

// RelayOrderEvents decodes order events and hands them to the hub. Events
// that cannot be decoded or name no valid status are rejected.
func RelayOrderEvents(hub Broadcaster) HandlerFunc {
	return func(_ context.Context, body []byte) error {
		var event OrderStatusChangedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		if event.OrderID == 0 || !event.OrderStatus.Valid() {
			return fmt.Errorf("%w: event %q", ErrInvalidEvent, event.ID)
		}
		hub.Broadcast(OrderStatusMessageType, event)
		return nil
	}
}

// RunDashboardRelay consumes the instance queue until ctx is done.
func RunDashboardRelay(ctx context.Context, qc *Client, queueName string, hub Broadcaster, logger *zap.Logger) error {
	return qc.Consume(ctx, queueName, RelayOrderEvents(hub), logger)
}

// Notifier announces order status changes.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, event OrderStatusChangedEvent) error
}

// SelectNotifier publishes through the broker only when this instance relays
// its dashboard queue back to the hub. Otherwise events are broadcast locally.
func SelectNotifier(qc *Client, relaying bool, hub Broadcaster) Notifier {
	if qc == nil || !relaying {
		return LocalNotifier{Hub: hub}
	}
	return NewPublisher(qc)
}
