package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"portfolio/api/models"
	"portfolio/api/utils"
)

const (
	TimeRange7d  = "7d"
	TimeRange30d = "30d"

	// MaxEvents caps the snapshot loaded for one stats call.
	MaxEvents = 10000

	seriesDays          = 7
	topPagesLimit       = 5
	recentVisitorsLimit = 10

	// No session model exists yet, so the dashboard gets a fixed value.
	avgSessionPlaceholder = "3m 42s"
	emptySessionTime      = "0m 0s"
)

// Aggregator computes dashboard statistics from a window of events.
type Aggregator struct {
	repo   EventRepository
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewAggregator(repo EventRepository, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WindowStart returns the lower timestamp bound for a time range. Anything
// other than 7d or 30d is unbounded.
func WindowStart(timeRange string, now time.Time) time.Time {
	switch timeRange {
	case TimeRange7d:
		return now.AddDate(0, 0, -7)
	case TimeRange30d:
		return now.AddDate(0, 0, -30)
	default:
		return time.Unix(0, 0).UTC()
	}
}

// Stats loads one snapshot for timeRange and derives every view from it.
func (a *Aggregator) Stats(ctx context.Context, timeRange string) (*models.AnalyticsStats, error) {
	now := a.now()
	since := WindowStart(timeRange, now)

	events, err := a.repo.EventsSince(ctx, since, MaxEvents)
	if err != nil {
		return nil, fmt.Errorf("load analytics events since %s: %w", since.Format(time.RFC3339), err)
	}
	if len(events) == MaxEvents {
		a.logger.WithField("time_range", timeRange).Warn("Analytics snapshot hit the event cap; older events were skipped")
	}
	return Compute(events, now), nil
}

// EmptyStats is the payload served when stats cannot be computed.
func EmptyStats() *models.AnalyticsStats {
	return &models.AnalyticsStats{
		AvgSessionTime: emptySessionTime,
		VisitData:      []models.VisitDataPoint{},
		PageViews:      []models.PageView{},
		DeviceStats:    []models.DeviceStat{},
		RecentVisitors: []models.RecentVisitor{},
	}
}

// Compute derives the dashboard views from an in-memory snapshot.
func Compute(events []models.AnalyticsEvent, now time.Time) *models.AnalyticsStats {
	now = now.UTC()
	return &models.AnalyticsStats{
		TotalVisits:    lo.CountBy(events, isType(models.EventTypePageView)),
		TotalClicks:    lo.CountBy(events, isType(models.EventTypeClick)),
		UniqueVisitors: len(lo.UniqBy(events, func(e models.AnalyticsEvent) string { return e.IPAddress })),
		AvgSessionTime: avgSessionPlaceholder,
		VisitData:      dailySeries(events, now),
		PageViews:      topPages(events),
		DeviceStats:    deviceShare(events),
		RecentVisitors: recentVisitors(events, now),
	}
}

func isType(eventType string) func(models.AnalyticsEvent) bool {
	return func(e models.AnalyticsEvent) bool { return e.EventType == eventType }
}

// dailySeries always yields seven UTC calendar days ending today, oldest
// first, whatever window the snapshot was loaded for.
func dailySeries(events []models.AnalyticsEvent, now time.Time) []models.VisitDataPoint {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	series := make([]models.VisitDataPoint, 0, seriesDays)
	for i := seriesDays - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		end := start.AddDate(0, 0, 1)
		point := models.VisitDataPoint{Date: start.Weekday().String()[:3]}
		for _, e := range events {
			ts := e.Timestamp.UTC()
			if ts.Before(start) || !ts.Before(end) {
				continue
			}
			switch e.EventType {
			case models.EventTypePageView:
				point.Visits++
			case models.EventTypeClick:
				point.Clicks++
			}
		}
		series = append(series, point)
	}
	return series
}

// topPages ranks pages by page_view count. Equal counts are ordered by page.
func topPages(events []models.AnalyticsEvent) []models.PageView {
	views := lo.Filter(events, func(e models.AnalyticsEvent, _ int) bool {
		return e.EventType == models.EventTypePageView
	})
	counts := lo.CountValuesBy(views, func(e models.AnalyticsEvent) string { return e.Page })

	pages := lo.MapToSlice(counts, func(page string, n int) models.PageView {
		return models.PageView{Page: page, Views: n}
	})
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Views != pages[j].Views {
			return pages[i].Views > pages[j].Views
		}
		return pages[i].Page < pages[j].Page
	})
	if len(pages) > topPagesLimit {
		pages = pages[:topPagesLimit]
	}
	return pages
}

// deviceShare gives each device type its truncated percentage of all events.
// The values need not sum to 100.
func deviceShare(events []models.AnalyticsEvent) []models.DeviceStat {
	stats := []models.DeviceStat{}
	total := len(events)
	if total == 0 {
		return stats
	}

	counts := lo.CountValuesBy(events, func(e models.AnalyticsEvent) string {
		if e.DeviceType == "" {
			return DeviceDesktop
		}
		return e.DeviceType
	})
	type share struct {
		device string
		count  int
	}
	shares := lo.MapToSlice(counts, func(device string, n int) share { return share{device, n} })
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].count != shares[j].count {
			return shares[i].count > shares[j].count
		}
		return shares[i].device < shares[j].device
	})

	for _, s := range shares {
		stats = append(stats, models.DeviceStat{
			Name:  lo.Capitalize(s.device),
			Value: s.count * 100 / total,
		})
	}
	return stats
}

func recentVisitors(events []models.AnalyticsEvent, now time.Time) []models.RecentVisitor {
	sorted := make([]models.AnalyticsEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if len(sorted) > recentVisitorsLimit {
		sorted = sorted[:recentVisitorsLimit]
	}

	return lo.Map(sorted, func(e models.AnalyticsEvent, _ int) models.RecentVisitor {
		device := e.DeviceType
		if device == "" {
			device = DeviceDesktop
		}
		return models.RecentVisitor{
			IP:        utils.OrUnknown(e.IPAddress),
			Timestamp: RelativeAge(now.Sub(e.Timestamp)),
			Page:      e.Page,
			Device:    lo.Capitalize(device),
			Browser:   utils.OrUnknown(e.Browser),
			OS:        utils.OrUnknown(e.OS),
			Location:  utils.OrUnknown(e.Location),
		}
	})
}

// RelativeAge renders an age as whole seconds, minutes or hours.
func RelativeAge(age time.Duration) string {
	secs := int64(age / time.Second)
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	default:
		return fmt.Sprintf("%dh ago", secs/3600)
	}
}
