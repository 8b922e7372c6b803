// api/models/event.go
package models

import "time"

// Event types the aggregator counts. Any other value is stored but not counted.
const (
	EventTypePageView = "page_view"
	EventTypeClick    = "click"
)

// AnalyticsEvent is one recorded interaction. It is never updated after insert.
type AnalyticsEvent struct {
	ID         string    `json:"id" ch:"id"`
	EventType  string    `json:"event_type" ch:"event_type"`
	Page       string    `json:"page" ch:"page"`
	IPAddress  string    `json:"ip_address" ch:"ip_address"`
	UserAgent  string    `json:"user_agent" ch:"user_agent"`
	DeviceType string    `json:"device_type" ch:"device_type"`
	Browser    string    `json:"browser" ch:"browser"`
	OS         string    `json:"os" ch:"os"`
	Location   string    `json:"location" ch:"location"`
	Timestamp  time.Time `json:"timestamp" ch:"timestamp"`
}

// TrackRequest is the body of POST /analytics/track. Both keys must be
// present; empty strings are valid values.
type TrackRequest struct {
	EventType *string `json:"event_type" binding:"required"`
	Page      *string `json:"page" binding:"required"`
}

// TrackingResponse reports whether an event was recorded.
type TrackingResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"event_id"`
}
