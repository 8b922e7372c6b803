package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/api/metrics"
)

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	perform(t, r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "/ok", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	perform(t, r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	perform(t, r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Len(t, hook.AllEntries(), 3)
}

func TestHTTPMetrics(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(HTTPMetrics(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(t, r, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	perform(t, r, httptest.NewRequest(http.MethodGet, "/items/2", nil))
	perform(t, r, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")))
}
