package analytics

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"portfolio/api/models"
)

type memoryRepo struct {
	mu        sync.Mutex
	events    []models.AnalyticsEvent
	insertErr error
	loadErr   error
	lastSince time.Time
	lastLimit int
}

func (r *memoryRepo) InsertEvent(_ context.Context, e *models.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *memoryRepo) EventsSince(_ context.Context, since time.Time, limit int) ([]models.AnalyticsEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSince, r.lastLimit = since, limit
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	var out []models.AnalyticsEvent
	for _, e := range r.events {
		if !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
