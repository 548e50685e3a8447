package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init()

	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", PrometheusHandler())

	before := testutil.ToFloat64(RequestCounter.WithLabelValues(http.MethodGet, "/ping", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	after := testutil.ToFloat64(RequestCounter.WithLabelValues(http.MethodGet, "/ping", "200"))
	assert.Equal(t, before+1, after)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestObserveBackend(t *testing.T) {
	Init()
	okBefore := testutil.ToFloat64(BackendRequestCounter.WithLabelValues("inference", "ok"))
	errBefore := testutil.ToFloat64(BackendRequestCounter.WithLabelValues("inference", "error"))

	ObserveBackend("inference", time.Now(), nil)
	ObserveBackend("inference", time.Now(), errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(BackendRequestCounter.WithLabelValues("inference", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(BackendRequestCounter.WithLabelValues("inference", "error")))
}
