package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"store-admin-service/internal/backend"
	"store-admin-service/internal/config"
	"store-admin-service/internal/queue"
)

// Notifier announces order changes to connected dashboards.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, event queue.OrderStatusChangedEvent) error
}

// SummaryPublisher uploads a rendered order summary and returns its URL.
type SummaryPublisher interface {
	Publish(ctx context.Context, orderID int64, pdf []byte) (url string, stale []string, err error)
}

type Handler struct {
	Backend   *backend.Client
	Logger    *zap.Logger
	Config    config.Config
	Notifier  Notifier
	Summaries SummaryPublisher
	Now       func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
