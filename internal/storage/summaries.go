package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type objectBucket interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, cacheControl string) (string, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteKey(ctx context.Context, key string) error
}

// SummaryPublisher keeps at most one published summary document per order.
type SummaryPublisher struct {
	bucket objectBucket
}

func NewSummaryPublisher(bucket objectBucket) *SummaryPublisher {
	return &SummaryPublisher{bucket: bucket}
}

func summaryPrefix(orderID int64) string {
	return fmt.Sprintf("order-summaries/%d/", orderID)
}

// SummaryKey names a fresh object so cached copies of older uploads never
// shadow the new one.
func SummaryKey(orderID int64) string {
	return summaryPrefix(orderID) + uuid.NewString() + ".pdf"
}

// Publish uploads pdf and removes earlier uploads for the same order. A failed
// cleanup does not fail the publish; the stale keys are returned instead.
func (p *SummaryPublisher) Publish(ctx context.Context, orderID int64, pdf []byte) (url string, stale []string, err error) {
	key := SummaryKey(orderID)
	url, err = p.bucket.PutObject(ctx, key, pdf, "application/pdf", "private, max-age=300")
	if err != nil {
		return "", nil, fmt.Errorf("upload summary: %w", err)
	}

	keys, err := p.bucket.ListKeys(ctx, summaryPrefix(orderID))
	if err != nil {
		return url, nil, nil
	}
	for _, existing := range keys {
		if strings.TrimLeft(existing, "/") == key {
			continue
		}
		if err := p.bucket.DeleteKey(ctx, existing); err != nil {
			stale = append(stale, existing)
		}
	}
	return url, stale, nil
}
