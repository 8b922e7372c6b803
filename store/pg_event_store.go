package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"portfolio/api/analytics"
	"portfolio/api/models"
)

var _ analytics.EventRepository = (*PostgresEventStore)(nil)

// PostgresEventStore keeps analytics events in the relational database. It is
// the default backend for single-node deployments.
type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) InsertEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	query := `
		INSERT INTO analytics_events (
			id, event_type, page, ip_address, user_agent,
			device_type, browser, os, location, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
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
		return fmt.Errorf("failed to insert analytics event: %w", err)
	}
	return nil
}

func (s *PostgresEventStore) EventsSince(ctx context.Context, since time.Time, limit int) ([]models.AnalyticsEvent, error) {
	query := `
		SELECT id, event_type, page, ip_address, user_agent,
		       device_type, browser, os, location, timestamp
		FROM analytics_events
		WHERE timestamp >= $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics events: %w", err)
	}
	defer rows.Close()

	events := make([]models.AnalyticsEvent, 0)
	for rows.Next() {
		var e models.AnalyticsEvent
		if err := rows.Scan(
			&e.ID, &e.EventType, &e.Page, &e.IPAddress, &e.UserAgent,
			&e.DeviceType, &e.Browser, &e.OS, &e.Location, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analytics event: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analytics events: %w", err)
	}
	return events, nil
}
