// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"portfolio/api/analytics"
	"portfolio/api/metrics"
	"portfolio/api/models"
)

// storeTimeout bounds each analytics round trip to the event store.
const storeTimeout = 15 * time.Second

type EventTracker interface {
	Track(ctx context.Context, in analytics.TrackInput) (string, error)
}

type StatsProvider interface {
	Stats(ctx context.Context, timeRange string) (*models.AnalyticsStats, error)
}

// AnalyticsHandlers expose the ingestor and aggregator over HTTP. Component
// errors never reach the client: they become a 200 with a failure payload.
type AnalyticsHandlers struct {
	tracker EventTracker
	stats   StatsProvider
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
}

func NewAnalyticsHandlers(tracker EventTracker, stats StatsProvider, m *metrics.Metrics, logger logrus.FieldLogger) *AnalyticsHandlers {
	return &AnalyticsHandlers{tracker: tracker, stats: stats, metrics: m, logger: logger}
}

func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	eventType, page := *req.EventType, *req.Page
	eventID, err := h.tracker.Track(ctx, analytics.TrackInput{
		EventType: eventType,
		Page:      page,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	h.metrics.ObserveTrack(eventType, err)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"event_type": eventType,
			"page":       page,
		}).Error("Failed to track analytics event")
		c.JSON(http.StatusOK, models.TrackingResponse{Success: false, EventID: ""})
		return
	}

	c.JSON(http.StatusOK, models.TrackingResponse{Success: true, EventID: eventID})
}

func (h *AnalyticsHandlers) GetStats(c *gin.Context) {
	timeRange := c.DefaultQuery("time_range", analytics.TimeRange7d)

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	stats, err := h.stats.Stats(ctx, timeRange)
	h.metrics.ObserveStats(timeRange, err)
	if err != nil {
		h.logger.WithError(err).WithField("time_range", timeRange).Error("Failed to compute analytics stats")
		c.JSON(http.StatusOK, analytics.EmptyStats())
		return
	}

	c.JSON(http.StatusOK, stats)
}
