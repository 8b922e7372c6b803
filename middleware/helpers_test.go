package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"portfolio/api/models"
	"portfolio/api/store"
	"portfolio/api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[id], nil
}

type fakeUsers struct {
	users map[string]*models.AdminUser
	err   error
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

var errBackend = errors.New("backend unavailable")

func perform(t *testing.T, r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var _ TokenValidator = (*utils.TokenManager)(nil)
