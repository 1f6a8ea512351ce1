package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestObserveRequestExposed(t *testing.T) {
	m := New()
	m.ObserveRequest("prime", 0.002)
	m.SessionStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	if !strings.Contains(body, `primed_requests_total{command="prime"} 1`) {
		t.Fatalf("request counter missing from exposition:\n%s", body)
	}
	if !strings.Contains(body, "primed_active_sessions 1") {
		t.Fatalf("active sessions gauge missing from exposition:\n%s", body)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("prime", 0.1)
	m.SessionStarted()
	m.SessionEnded()
}
