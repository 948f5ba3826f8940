package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-attendance-api/internal/service"
)

type observation struct {
	method string
	path   string
	status int
}

type observerStub struct {
	calls []observation
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.calls = append(o.calls, observation{method: method, path: path, status: status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &observerStub{}
	r := gin.New()
	r.Use(Metrics(stub))
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/evt-42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin.php", nil))

	require.Len(t, stub.calls, 2)
	assert.Equal(t, observation{method: http.MethodGet, path: "/events/:id", status: http.StatusAccepted}, stub.calls[0])
	assert.Equal(t, observation{method: http.MethodGet, path: unmatchedRoute, status: http.StatusNotFound}, stub.calls[1])
}

func TestMetricsFeedsPrometheusCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetricsWithoutObserver(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
