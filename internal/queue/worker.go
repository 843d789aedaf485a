package queue

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, body []byte) error

var ErrConsumerClosed = errors.New("consumer closed")

// Consume handles deliveries until ctx is done or the channel closes. Handled
// messages are acked; a handler error drops the message without requeueing.
func (c *Client) Consume(ctx context.Context, queue string, handler HandlerFunc, logger *zap.Logger) error {
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return ErrConsumerClosed
			}
			handleDelivery(ctx, msg, handler, logger)
		}
	}
}

func handleDelivery(ctx context.Context, msg amqp.Delivery, handler HandlerFunc, logger *zap.Logger) {
	if err := handler(ctx, msg.Body); err != nil {
		if logger != nil {
			logger.Warn("drop queue message", zap.String("routingKey", msg.RoutingKey), zap.Error(err))
		}
		_ = msg.Nack(false, false)
		return
	}
	_ = msg.Ack(false)
}
