package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/health", "200", 10*time.Millisecond)
	m.ObserveAnalysis("problem", true, "unavailable")
	m.ObserveAnalysis("code", false, "")
	m.ObserveLandingFeed("news", "static")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.analysisResults.WithLabelValues("problem", "true", "unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analysisResults.WithLabelValues("code", "false", "none")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "iapss_api_requests_total"))
	assert.True(t, strings.Contains(body, `iapss_landing_feed_resolutions_total{feed="news",source="static"} 1`))
}

func TestParseHeaders(t *testing.T) {
	assert.Nil(t, ParseHeaders(" "))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, ParseHeaders("a=1, b=2,broken,=x"))
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 1.0, clampRatio(3))
	assert.Equal(t, 0.25, clampRatio(0.25))
}
