package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserver(t *testing.T) {
	m := New()
	var _ usecase.StageObserver = m

	m.ObserveOutcome(usecase.OutcomeSuccess)
	m.ObserveOutcome(usecase.OutcomeSuccess)
	m.ObserveOutcome(usecase.OutcomeFailure)
	m.ObserveEmptyRecommendation(domain.Lipstick)
	m.ObserveStage(usecase.StageDecoded, 3*time.Millisecond)

	if got := testutil.ToFloat64(m.PredictionsTotal.WithLabelValues(usecase.OutcomeSuccess)); got != 2 {
		t.Errorf("success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.EmptyRecommendation.WithLabelValues("lipstick")); got != 1 {
		t.Errorf("empty lipstick = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.StageDuration); n != 1 {
		t.Errorf("stage series = %d, want 1", n)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveOutcome(usecase.OutcomeFailure)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if !strings.Contains(string(body), `predictions_total{outcome="failure"} 1`) {
		t.Errorf("predictions_total not exposed:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("go collector not registered")
	}
}

func TestNewIsolatedRegistries(t *testing.T) {
	// два экземпляра не должны конфликтовать при регистрации
	a, b := New(), New()
	a.RateLimited.Inc()
	if testutil.ToFloat64(b.RateLimited) != 0 {
		t.Error("registries are shared")
	}
}
