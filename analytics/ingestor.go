package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"portfolio/api/models"
	"portfolio/api/utils"
)

// TrackInput carries the caller-supplied fields plus the transport metadata.
type TrackInput struct {
	EventType string
	Page      string
	ClientIP  string
	UserAgent string
}

// Ingestor classifies and persists analytics events.
type Ingestor struct {
	repo    EventRepository
	locator Locator
	logger  logrus.FieldLogger
	now     func() time.Time
	newID   func() string
}

// NewIngestor creates an Ingestor backed by repo. A nil locator falls back to
// PrefixLocator.
func NewIngestor(repo EventRepository, locator Locator, logger logrus.FieldLogger) *Ingestor {
	if locator == nil {
		locator = PrefixLocator{}
	}
	return &Ingestor{
		repo:    repo,
		locator: locator,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
}

// Track records one event and returns its id. Event type and page are stored
// as given, empty or not. Every call creates a new event, so retries are not
// deduplicated.
func (i *Ingestor) Track(ctx context.Context, in TrackInput) (string, error) {
	event := i.newEvent(in)
	if err := i.repo.InsertEvent(ctx, event); err != nil {
		return "", fmt.Errorf("insert analytics event: %w", err)
	}

	i.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.EventType,
		"page":       event.Page,
		"ip":         event.IPAddress,
	}).Info("Analytics event tracked")
	return event.ID, nil
}

func (i *Ingestor) newEvent(in TrackInput) *models.AnalyticsEvent {
	ip := utils.OrUnknown(in.ClientIP)
	ua := utils.OrUnknown(in.UserAgent)
	return &models.AnalyticsEvent{
		ID:         i.newID(),
		EventType:  in.EventType,
		Page:       in.Page,
		IPAddress:  ip,
		UserAgent:  ua,
		DeviceType: ClassifyDevice(ua),
		Browser:    ClassifyBrowser(ua),
		OS:         ClassifyOS(ua),
		Location:   i.locator.Locate(ip),
		Timestamp:  i.now(),
	}
}
