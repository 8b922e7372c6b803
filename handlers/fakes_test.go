package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"portfolio/api/models"
	"portfolio/api/store"
	"portfolio/api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errDown = errors.New("database unavailable")

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// eventRepo is an in-memory analytics.EventRepository.
type eventRepo struct {
	mu        sync.Mutex
	events    []models.AnalyticsEvent
	insertErr error
	loadErr   error
}

func (r *eventRepo) InsertEvent(_ context.Context, e *models.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *eventRepo) EventsSince(_ context.Context, since time.Time, limit int) ([]models.AnalyticsEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	out := []models.AnalyticsEvent{}
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

type userRepo struct {
	mu        sync.Mutex
	users     map[string]*models.AdminUser
	getErr    error
	createErr error
	updateErr error
	created   int
}

func newUserRepo() *userRepo {
	return &userRepo{users: map[string]*models.AdminUser{}}
}

func (r *userRepo) add(t *testing.T, username, password string) *models.AdminUser {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &models.AdminUser{ID: "u-" + username, Username: username, PasswordHash: hash}
	r.users[username] = u
	return u
}

func (r *userRepo) CreateUser(_ context.Context, username string, hash []byte) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.users[username]; ok {
		return nil, store.ErrUserExists
	}
	r.created++
	u := &models.AdminUser{ID: "u-" + username, Username: username, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	r.users[username] = u
	return u, nil
}

func (r *userRepo) GetUserByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, username string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return store.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, username string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[username]
	if !ok {
		return store.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

type contactRepo struct {
	mu         sync.Mutex
	saved      []models.Contact
	err        error
	lastSkip   int
	lastLimit  int
	lastUnread bool
	modified   int64
}

func (r *contactRepo) CreateContact(_ context.Context, c *models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, *c)
	return nil
}

func (r *contactRepo) ListContacts(_ context.Context, skip, limit int, unreadOnly bool) ([]models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSkip, r.lastLimit, r.lastUnread = skip, limit, unreadOnly
	if r.err != nil {
		return nil, r.err
	}
	return append([]models.Contact{}, r.saved...), nil
}

func (r *contactRepo) MarkRead(_ context.Context, _ string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return r.modified, nil
}
