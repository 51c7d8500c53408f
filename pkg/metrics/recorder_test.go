package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	rec := NewRecorder(prometheus.NewRegistry())

	rec.PasteCreated()
	rec.PasteCreated()
	rec.PasteBurned()
	rec.PastesSwept(3)
	rec.PastesSwept(0)
	rec.SweepFailed()
	rec.Summarized("ok", 42)
	rec.Summarized("error", 0)

	require.Equal(t, 2.0, testutil.ToFloat64(rec.pastesCreated))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.pastesBurned))
	require.Equal(t, 3.0, testutil.ToFloat64(rec.pastesSwept))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.sweepFailures))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.summaries.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.summaries.WithLabelValues("error")))
	require.Equal(t, 42.0, testutil.ToFloat64(rec.llmTokens))
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	rec := NewRecorder(prometheus.NewRegistry())
	rec.PasteCreated()
	rec.ObserveHTTP(http.MethodGet, "/pastes/:key", http.StatusOK, 5*time.Millisecond)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pastebin_pastes_created_total 1")
	require.Contains(t, w.Body.String(), `route="/pastes/:key"`)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	require.NotPanics(t, func() {
		rec.PasteCreated()
		rec.PasteBurned()
		rec.PastesSwept(1)
		rec.SweepFailed()
		rec.Summarized("ok", 1)
		rec.ObserveHTTP(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})
}

func TestTokenUsageTotal(t *testing.T) {
	require.Equal(t, 30, TokenUsage{PromptTokens: 10, CompletionTokens: 20}.Total())
	require.Equal(t, 25, TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 25}.Total())
	require.True(t, TokenUsage{}.IsZero())
}
