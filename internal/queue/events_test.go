package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"store-admin-service/internal/orders"
)

type recordingHub struct {
	types []string
	data  []any
}

func (h *recordingHub) Broadcast(msgType string, data any) {
	h.types = append(h.types, msgType)
	h.data = append(h.data, data)
}

func TestRelayOrderEvents(t *testing.T) {
	event := NewOrderStatusChangedEvent(41, orders.OrderPending, orders.OrderShipped, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	valid, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	cases := []struct {
		name      string
		body      []byte
		broadcast bool
	}{
		{name: "valid", body: valid, broadcast: true},
		{name: "malformed", body: []byte(`{"orderId":`), broadcast: false},
		{name: "missing order", body: []byte(`{"id":"x","orderStatus":1}`), broadcast: false},
		{name: "unknown status", body: []byte(`{"id":"x","orderId":3,"orderStatus":9}`), broadcast: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hub := &recordingHub{}
			err := RelayOrderEvents(hub)(context.Background(), tc.body)
			if tc.broadcast && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.broadcast && !errors.Is(err, ErrInvalidEvent) {
				t.Fatalf("expected ErrInvalidEvent, got %v", err)
			}
			if got := len(hub.types) == 1; got != tc.broadcast {
				t.Fatalf("broadcast=%v, want %v", got, tc.broadcast)
			}
			if !tc.broadcast {
				return
			}
			if hub.types[0] != OrderStatusMessageType {
				t.Fatalf("unexpected message type %q", hub.types[0])
			}
			got, ok := hub.data[0].(OrderStatusChangedEvent)
			if !ok || got.OrderID != 41 || got.OrderStatus != orders.OrderShipped || got.PreviousStatus != orders.OrderPending {
				t.Fatalf("unexpected event %+v", hub.data[0])
			}
		})
	}
}

func TestLocalNotifierBroadcasts(t *testing.T) {
	hub := &recordingHub{}
	event := NewOrderStatusChangedEvent(7, orders.OrderProcessing, orders.OrderCancelled, time.Now())
	if err := (LocalNotifier{Hub: hub}).OrderStatusChanged(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hub.types) != 1 || hub.types[0] != OrderStatusMessageType {
		t.Fatalf("expected one order.status broadcast, got %v", hub.types)
	}
}

func TestNewOrderStatusChangedEvent(t *testing.T) {
	cairo := time.FixedZone("EET", 2*60*60)
	event := NewOrderStatusChangedEvent(5, orders.OrderPending, orders.OrderProcessing, time.Date(2024, 1, 1, 12, 0, 0, 0, cairo))
	if event.ID == "" {
		t.Fatalf("expected event id")
	}
	if event.ChangedAt.Location() != time.UTC || event.ChangedAt.Hour() != 10 {
		t.Fatalf("expected UTC timestamp, got %s", event.ChangedAt)
	}
}

func TestDashboardQueueName(t *testing.T) {
	if got := DashboardQueueName(""); got != DashboardQueue {
		t.Fatalf("got %q", got)
	}
	if got := DashboardQueueName("api-2"); got != "store-admin.dashboard.api-2" {
		t.Fatalf("got %q", got)
	}
}

type recordingAcknowledger struct {
	acked    []uint64
	nacked   []uint64
	requeued bool
}

func (a *recordingAcknowledger) Ack(tag uint64, _ bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.nacked = append(a.nacked, tag)
	a.requeued = a.requeued || requeue
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestHandleDeliverySettlesMessages(t *testing.T) {
	valid, err := json.Marshal(NewOrderStatusChangedEvent(3, orders.OrderPending, orders.OrderDelivered, time.Now()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	hub := &recordingHub{}
	ack := &recordingAcknowledger{}
	relay := RelayOrderEvents(hub)

	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: valid}, relay, nil)
	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("{")}, relay, nil)

	if len(ack.acked) != 1 || ack.acked[0] != 1 {
		t.Fatalf("expected delivery 1 acked, got %v", ack.acked)
	}
	if len(ack.nacked) != 1 || ack.nacked[0] != 2 || ack.requeued {
		t.Fatalf("expected delivery 2 dropped without requeue, got %v requeue=%v", ack.nacked, ack.requeued)
	}
	if len(hub.types) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(hub.types))
	}
}

func TestSelectNotifier(t *testing.T) {
	hub := &recordingHub{}
	cases := []struct {
		name     string
		client   *Client
		relaying bool
		local    bool
	}{
		{name: "no broker", client: nil, relaying: true, local: true},
		{name: "broker without relay", client: &Client{}, relaying: false, local: true},
		{name: "broker with relay", client: &Client{}, relaying: true, local: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			notifier := SelectNotifier(tc.client, tc.relaying, hub)
			_, isLocal := notifier.(LocalNotifier)
			_, isPublisher := notifier.(*Publisher)
			if isLocal != tc.local || isPublisher == tc.local {
				t.Fatalf("unexpected notifier %T", notifier)
			}
		})
	}

	// Without a relay, a status change still reaches this instance's sockets.
	event := NewOrderStatusChangedEvent(8, orders.OrderPending, orders.OrderShipped, time.Now())
	if err := SelectNotifier(&Client{}, false, hub).OrderStatusChanged(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hub.types) != 1 || hub.types[0] != OrderStatusMessageType {
		t.Fatalf("expected local broadcast, got %v", hub.types)
	}
}
