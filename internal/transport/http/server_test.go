package transporthttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"emarknews/internal/aggregate"
	"emarknews/internal/provider"
	"emarknews/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeNews struct {
	forced []bool
	panic  bool
}

func (f *fakeNews) Get(ctx context.Context, force bool) aggregate.Result {
	if f.panic {
		panic("boom")
	}
	f.forced = append(f.forced, force)
	return aggregate.DefaultResult(time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC))
}

func (f *fakeNews) Status() aggregate.Status {
	return aggregate.Status{Version: aggregate.Version, Degraded: []string{}}
}

func (f *fakeNews) Metrics() map[string]provider.Report {
	return provider.NewRecorder().Report()
}

func (f *fakeNews) Health() aggregate.Health {
	return aggregate.Health{CacheSize: 1, InProgress: true}
}

type fakeRuns struct {
	filter store.Filter
	err    error
}

func (f *fakeRuns) ListRuns(ctx context.Context, filter store.Filter) ([]store.Run, error) {
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return []store.Run{{ID: "run-1", Outcome: store.OutcomePartial, FailedBranches: "korea"}}, nil
}

func newTestServer(svc NewsService, runs RunLister) http.Handler {
	return NewServer(svc, runs, slog.New(slog.NewTextHandler(io.Discard, nil))).Routes()
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return payload
}

func TestNewsEndpoint(t *testing.T) {
	svc := &fakeNews{}
	h := newTestServer(svc, nil)

	rec := do(t, h, http.MethodGet, "/api/news")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload struct {
		Success bool             `json:"success"`
		Data    aggregate.Result `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success || len(payload.Data.Sections.World) != 1 || len(payload.Data.Trending) == 0 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	do(t, h, http.MethodGet, "/api/news?refresh=true")
	if len(svc.forced) != 2 || svc.forced[0] || !svc.forced[1] {
		t.Fatalf("expected refresh query to force, got %v", svc.forced)
	}
}

func TestRefreshEndpointForces(t *testing.T) {
	svc := &fakeNews{}
	rec := do(t, newTestServer(svc, nil), http.MethodPost, "/api/refresh")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(svc.forced) != 1 || !svc.forced[0] {
		t.Fatalf("expected forced refresh, got %v", svc.forced)
	}
	if decode(t, rec)["message"] != msgRefreshed {
		t.Fatalf("expected refresh message")
	}
}

func TestHealthEndpoint(t *testing.T) {
	rec := do(t, newTestServer(&fakeNews{}, nil), http.MethodGet, "/health")
	payload := decode(t, rec)
	if payload["status"] != "healthy" || payload["cacheSize"] != float64(1) || payload["inProgress"] != true {
		t.Fatalf("unexpected health payload %v", payload)
	}
}

func TestStatusAndMetricsEndpoints(t *testing.T) {
	h := newTestServer(&fakeNews{}, nil)

	status := decode(t, do(t, h, http.MethodGet, "/api/status"))
	data, ok := status["data"].(map[string]any)
	if !ok || data["version"] != aggregate.Version {
		t.Fatalf("unexpected status payload %v", status)
	}

	metrics := decode(t, do(t, h, http.MethodGet, "/api/metrics"))
	reports, ok := metrics["data"].(map[string]any)
	if !ok || len(reports) != len(provider.All()) {
		t.Fatalf("unexpected metrics payload %v", metrics)
	}
}

func TestRefreshesEndpoint(t *testing.T) {
	runs := &fakeRuns{}
	h := newTestServer(&fakeNews{}, runs)

	rec := do(t, h, http.MethodGet, "/api/refreshes?outcome=partial&limit=5&since=2025-10-01T00:00:00Z")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if runs.filter.Outcome != store.OutcomePartial || runs.filter.Limit != 5 || runs.filter.Since.IsZero() {
		t.Fatalf("unexpected filter %+v", runs.filter)
	}

	for _, target := range []string{
		"/api/refreshes?outcome=maybe",
		"/api/refreshes?limit=0",
		"/api/refreshes?since=yesterday",
	} {
		if rec := do(t, h, http.MethodGet, target); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}

	runs.err = errors.New("disk gone")
	if rec := do(t, h, http.MethodGet, "/api/refreshes"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on store error, got %d", rec.Code)
	}
}

func TestRefreshesDisabledWithoutStore(t *testing.T) {
	rec := do(t, newTestServer(&fakeNews{}, nil), http.MethodGet, "/api/refreshes")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	rec := do(t, newTestServer(&fakeNews{}, nil), http.MethodGet, "/api/unknown")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	payload := decode(t, rec)
	if payload["success"] != false || payload["path"] != "/api/unknown" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestPanicReturnsJSON500(t *testing.T) {
	rec := do(t, newTestServer(&fakeNews{panic: true}, nil), http.MethodGet, "/api/news")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if decode(t, rec)["error"] != msgInternalError {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestServer(&fakeNews{}, nil), http.MethodOptions, "/api/news")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestSwaggerServesOpenAPIDocument(t *testing.T) {
	rec := do(t, newTestServer(&fakeNews{}, nil), http.MethodGet, "/swagger/openapi.yaml")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/api/news") {
		t.Fatalf("expected embedded OpenAPI document, got %d", rec.Code)
	}
}
