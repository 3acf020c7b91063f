package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewTestManager()

	r := gin.New()
	r.Use(m.RequestMetrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "/items/:id", "418")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GaugeRequests))
}

func TestObserveGeneration(t *testing.T) {
	m := NewTestManager()
	m.ObserveGeneration("chat", time.Second, nil)
	m.ObserveGeneration("chat", time.Second, errors.New("boom"))
	m.ObserveGeneration("strategy", 2*time.Second, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterGenerations.WithLabelValues("chat", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterGenerations.WithLabelValues("chat", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterGenerations.WithLabelValues("strategy", "ok")))
}

func TestHandler(t *testing.T) {
	m := NewTestManager()
	m.ObserveGeneration("day_plan", time.Second, nil)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `coach_test_generation{kind="day_plan",outcome="ok"} 1`))
}
