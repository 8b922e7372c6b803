// api/store/analytics_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"portfolio/api/analytics"
	"portfolio/api/models"
)

var _ analytics.EventRepository = (*ClickHouseEventStore)(nil)

// ClickHouseEventStore keeps analytics events in a ClickHouse MergeTree table.
type ClickHouseEventStore struct {
	conn clickhouse.Conn
}

func NewClickHouseEventStore(conn clickhouse.Conn) *ClickHouseEventStore {
	return &ClickHouseEventStore{conn: conn}
}

func (s *ClickHouseEventStore) InsertEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	// Column order must match the analytics_events table.
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			id, event_type, page, ip_address, user_agent,
			device_type, browser, os, location, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	err = batch.Append(
		event.ID,
		event.EventType,
		event.Page,
		event.IPAddress,
		event.UserAgent,
		event.DeviceType,
		event.Browser,
		event.OS,
		event.Location,
		event.Timestamp,
	)
	if err != nil {
		_ = batch.Abort()
		return fmt.Errorf("failed to append event %s to batch: %w", event.ID, err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (s *ClickHouseEventStore) EventsSince(ctx context.Context, since time.Time, limit int) ([]models.AnalyticsEvent, error) {
	query := `
		SELECT id, event_type, page, ip_address, user_agent,
		       device_type, browser, os, location, timestamp
		FROM analytics_events
		WHERE timestamp >= ?
		ORDER BY timestamp DESC
		LIMIT ?
	`
	var events []models.AnalyticsEvent
	if err := s.conn.Select(ctx, &events, query, since, limit); err != nil {
		return nil, fmt.Errorf("failed to query analytics events: %w", err)
	}
	return events, nil
}
