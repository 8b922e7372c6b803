package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/api/analytics"
	"portfolio/api/metrics"
	"portfolio/api/models"
)

const uaIPhone = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

type analyticsFixture struct {
	repo    *eventRepo
	metrics *metrics.Metrics
	router  *gin.Engine
}

func newAnalyticsFixture() *analyticsFixture {
	f := &analyticsFixture{
		repo:    &eventRepo{},
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
	}
	logger := nullLogger()
	h := NewAnalyticsHandlers(
		analytics.NewIngestor(f.repo, nil, logger),
		analytics.NewAggregator(f.repo, logger),
		f.metrics,
		logger,
	)
	f.router = gin.New()
	f.router.POST("/api/analytics/track", h.TrackEvent)
	f.router.GET("/api/analytics/stats", h.GetStats)
	return f
}

func (f *analyticsFixture) track(t *testing.T, eventType, page, ua, remote string) *models.TrackingResponse {
	t.Helper()
	req := jsonRequest(t, http.MethodPost, "/api/analytics/track", gin.H{"event_type": eventType, "page": page})
	req.Header.Set("User-Agent", ua)
	req.RemoteAddr = remote
	rec := serve(f.router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.TrackingResponse](t, rec)
	return &resp
}

func TestTrackEvent_StoresClassifiedEvent(t *testing.T) {
	f := newAnalyticsFixture()

	resp := f.track(t, "page_view", "/", uaIPhone, "203.0.113.5:51000")

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.EventID)
	require.Len(t, f.repo.events, 1)
	stored := f.repo.events[0]
	assert.Equal(t, resp.EventID, stored.ID)
	assert.Equal(t, "203.0.113.5", stored.IPAddress)
	assert.Equal(t, "mobile", stored.DeviceType)
	assert.Equal(t, "iOS", stored.OS)
	assert.Equal(t, "Unknown", stored.Location)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EventsTrackedTotal.WithLabelValues("page_view", metrics.StatusSuccess)))
}

func TestTrackEvent_NotIdempotent(t *testing.T) {
	f := newAnalyticsFixture()

	a := f.track(t, "click", "/x", "curl/8.4.0", "10.0.0.1:1")
	b := f.track(t, "click", "/x", "curl/8.4.0", "10.0.0.1:1")

	assert.NotEqual(t, a.EventID, b.EventID)
	assert.Len(t, f.repo.events, 2)
}

func TestTrackEvent_MissingUserAgent(t *testing.T) {
	f := newAnalyticsFixture()

	req := jsonRequest(t, http.MethodPost, "/api/analytics/track", gin.H{"event_type": "page_view", "page": "/"})
	req.Header.Del("User-Agent")
	rec := serve(f.router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.repo.events, 1)
	assert.Equal(t, "Unknown", f.repo.events[0].UserAgent)
}

func TestTrackEvent_EmptyStringsAreStored(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		page      string
	}{
		{"empty page", "page_view", ""},
		{"empty type", "", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnalyticsFixture()

			resp := f.track(t, tt.eventType, tt.page, uaIPhone, "203.0.113.5:51000")

			assert.True(t, resp.Success)
			assert.NotEmpty(t, resp.EventID)
			require.Len(t, f.repo.events, 1)
			assert.Equal(t, tt.eventType, f.repo.events[0].EventType)
			assert.Equal(t, tt.page, f.repo.events[0].Page)
		})
	}
}

func TestTrackEvent_StoreFailureIsSoft(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.insertErr = errDown

	resp := f.track(t, "page_view", "/", uaIPhone, "203.0.113.5:51000")

	assert.False(t, resp.Success)
	assert.Empty(t, resp.EventID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EventsTrackedTotal.WithLabelValues("page_view", metrics.StatusFailure)))
}

func TestTrackEvent_InvalidBody(t *testing.T) {
	f := newAnalyticsFixture()

	tests := []struct {
		name string
		body any
	}{
		{"missing page", gin.H{"event_type": "click"}},
		{"missing type", gin.H{"page": "/"}},
		{"null page", gin.H{"event_type": "click", "page": nil}},
		{"not an object", []string{"click"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(f.router, jsonRequest(t, http.MethodPost, "/api/analytics/track", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid request body")
		})
	}
	assert.Empty(t, f.repo.events)
}

func TestGetStats_AfterTracking(t *testing.T) {
	f := newAnalyticsFixture()
	for i := 0; i < 3; i++ {
		f.track(t, "click", "/x", uaIPhone, "203.0.113.5:1")
	}
	for i := 0; i < 2; i++ {
		f.track(t, "page_view", "/x", uaIPhone, "203.0.113.6:1")
	}

	rec := serve(f.router, jsonRequest(t, http.MethodGet, "/api/analytics/stats?time_range=all", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.AnalyticsStats](t, rec)

	assert.Equal(t, 3, stats.TotalClicks)
	assert.Equal(t, 2, stats.TotalVisits)
	assert.Equal(t, 2, stats.UniqueVisitors)
	assert.Equal(t, "3m 42s", stats.AvgSessionTime)
	assert.Len(t, stats.VisitData, 7)
	assert.Contains(t, stats.PageViews, models.PageView{Page: "/x", Views: 2})
	assert.Len(t, stats.RecentVisitors, 5)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StatsRequestsTotal.WithLabelValues("all", metrics.StatusSuccess)))
}

func TestGetStats_DefaultsToSevenDays(t *testing.T) {
	f := newAnalyticsFixture()

	rec := serve(f.router, jsonRequest(t, http.MethodGet, "/api/analytics/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StatsRequestsTotal.WithLabelValues("7d", metrics.StatusSuccess)))
}

func TestGetStats_LoadFailureIsSoft(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.loadErr = errDown

	rec := serve(f.router, jsonRequest(t, http.MethodGet, "/api/analytics/stats?time_range=30d", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[models.AnalyticsStats](t, rec)
	assert.Zero(t, stats.TotalVisits)
	assert.Zero(t, stats.TotalClicks)
	assert.Zero(t, stats.UniqueVisitors)
	assert.Empty(t, stats.PageViews)
	assert.Empty(t, stats.DeviceStats)
	assert.Empty(t, stats.RecentVisitors)
	assert.Contains(t, rec.Body.String(), `"page_views":[]`, "lists serialize as empty arrays, not null")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StatsRequestsTotal.WithLabelValues("30d", metrics.StatusFailure)))
}
