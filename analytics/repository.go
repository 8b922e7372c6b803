package analytics

import (
	"context"
	"time"

	"portfolio/api/models"
)

// EventRepository is the append-only persistence port for analytics events.
type EventRepository interface {
	// InsertEvent appends a single event.
	InsertEvent(ctx context.Context, event *models.AnalyticsEvent) error

	// EventsSince returns up to limit events with timestamp >= since,
	// newest first.
	EventsSince(ctx context.Context, since time.Time, limit int) ([]models.AnalyticsEvent, error)
}
