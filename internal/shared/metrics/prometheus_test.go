package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := counterValue(t, httpRequestsTotal.WithLabelValues("GET", "/items/{id}", "418"))

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	after := counterValue(t, httpRequestsTotal.WithLabelValues("GET", "/items/{id}", "418"))
	if after-before != 1 {
		t.Errorf("Expected counter to increase by 1, got %v", after-before)
	}
}

func TestRecordPrediction(t *testing.T) {
	before := counterValue(t, predictionsTotal.WithLabelValues("NOT_SICK"))
	RecordPrediction("NOT_SICK", "fallback")
	if got := counterValue(t, predictionsTotal.WithLabelValues("NOT_SICK")) - before; got != 1 {
		t.Errorf("Expected 1 prediction recorded, got %v", got)
	}
}

func TestRecordStoreOperationCountsErrors(t *testing.T) {
	before := counterValue(t, storeErrors.WithLabelValues("memory", "append"))
	RecordStoreOperation("memory", "append", time.Millisecond, nil)
	RecordStoreOperation("memory", "append", time.Millisecond, errors.New("boom"))
	if got := counterValue(t, storeErrors.WithLabelValues("memory", "append")) - before; got != 1 {
		t.Errorf("Expected 1 store error, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordValidationFailure("age")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "diagnosis_validation_failures_total") {
		t.Error("Expected validation failure metric in exposition")
	}
}
