package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"healthmap/internal/catalog"
	"healthmap/internal/config"
	"healthmap/internal/geocoder"
	"healthmap/internal/logger"
	"healthmap/internal/metrics"
	"healthmap/internal/models"
	"healthmap/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubGeocoder struct {
	mu      sync.Mutex
	matches []geocoder.Match
	calls   int
}

func (g *stubGeocoder) Search(context.Context, string, int) ([]geocoder.Match, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.matches, nil
}

func (g *stubGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type testServer struct {
	*httptest.Server
	geo     *stubGeocoder
	metrics *metrics.Collector
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cat, err := catalog.Load(context.Background(), catalog.Embedded())
	if err != nil {
		t.Fatal(err)
	}
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	geo := &stubGeocoder{matches: []geocoder.Match{{Lat: -16.9186, Lon: 145.7781, DisplayName: "Cairns"}}}

	cfg := &config.Config{
		SessionSecret:  "test-secret",
		SessionTTL:     time.Hour,
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	h, err := NewRouter(cfg, Deps{
		Catalog:  cat,
		Sessions: services.NewSessionStore(geo, time.Hour, m, nil),
		Metrics:  m,
	}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ts := &testServer{Server: httptest.NewServer(h), geo: geo, metrics: m}
	t.Cleanup(ts.Close)

	var tok struct {
		Token string `json:"token"`
	}
	resp := ts.do(t, http.MethodPost, "/api/v1/sessions", "", &tok)
	if resp.StatusCode != http.StatusCreated || tok.Token == "" {
		t.Fatalf("create session: status %d", resp.StatusCode)
	}
	ts.token = tok.Token
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, out any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if ts.token != "" {
		req.Header.Set("X-Session-Token", ts.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp
}

type stateResponse struct {
	Selection models.Selection      `json:"selection"`
	Drone     *models.DeliveryUnit  `json:"drone"`
	Service   *models.HealthService `json:"service"`
	Territory *models.Territory     `json:"territory"`
}

func (ts *testServer) state(t *testing.T, method, path string) stateResponse {
	t.Helper()
	var out stateResponse
	if resp := ts.do(t, method, path, "", &out); resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s: status %d", method, path, resp.StatusCode)
	}
	return out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCatalogRoutes(t *testing.T) {
	ts := newTestServer(t)

	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if resp := ts.do(t, http.MethodGet, "/api/v1/layers/territories", "", &fc); resp.StatusCode != http.StatusOK {
		t.Fatalf("territories status = %d", resp.StatusCode)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 4 {
		t.Errorf("territory layer = %s with %d features", fc.Type, len(fc.Features))
	}

	fc.Features = nil
	ts.do(t, http.MethodGet, "/api/v1/layers/services?category=traditional", "", &fc)
	if len(fc.Features) != 1 {
		t.Errorf("traditional services = %d, want 1", len(fc.Features))
	}

	if resp := ts.do(t, http.MethodGet, "/api/v1/layers/services?category=astrology", "", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown category status = %d, want 400", resp.StatusCode)
	}

	var list struct {
		Count    int                    `json:"count"`
		Services []models.HealthService `json:"services"`
	}
	ts.do(t, http.MethodGet, "/api/v1/territories/yidinji/services", "", &list)
	if list.Count != 3 || list.Services[0].ID != "apunipima-head-office" {
		t.Errorf("yidinji services = %+v", list)
	}

	if resp := ts.do(t, http.MethodGet, "/api/v1/services/nope", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown service status = %d", resp.StatusCode)
	}

	var view struct {
		Center [2]float64 `json:"center"`
		Zoom   int        `json:"zoom"`
	}
	ts.do(t, http.MethodGet, "/api/v1/map", "", &view)
	if view.Center != [2]float64{-16.9186, 145.7781} || view.Zoom != 10 {
		t.Errorf("map view = %+v", view)
	}
}

func TestSessionRequired(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""
	if resp := ts.do(t, http.MethodGet, "/api/v1/state", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSearchFlow(t *testing.T) {
	ts := newTestServer(t)

	var snap models.PositionSnapshot
	resp := ts.do(t, http.MethodPost, "/api/v1/position/search", `{"query":"Cairns"}`, &snap)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if snap.Status != models.StatusResolved || snap.Position == nil {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Position.Lat != -16.9186 || snap.Position.Lon != 145.7781 || snap.Position.Source != models.SourceSearch {
		t.Errorf("position = %+v", snap.Position)
	}

	resp = ts.do(t, http.MethodPost, "/api/v1/position/search", `{"query":"   "}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank query status = %d, want 400", resp.StatusCode)
	}
	if n := ts.geo.callCount(); n != 1 {
		t.Errorf("geocoder calls = %d, want 1", n)
	}

	var got models.PositionSnapshot
	ts.do(t, http.MethodGet, "/api/v1/position", "", &got)
	if got.Position == nil || got.Position.Seq != snap.Position.Seq {
		t.Errorf("GET /position = %+v", got)
	}
}

func TestLocateFlow(t *testing.T) {
	ts := newTestServer(t)

	var snap models.PositionSnapshot
	ts.do(t, http.MethodPost, "/api/v1/position/locate",
		`{"coords":{"latitude":-16.92,"longitude":145.77,"accuracy":15}}`, &snap)
	if snap.Status != models.StatusResolved || snap.Position.Source != models.SourceSensor {
		t.Fatalf("snapshot = %+v", snap)
	}

	ts.do(t, http.MethodPost, "/api/v1/position/locate", `{"error":{"code":1}}`, &snap)
	if snap.Status != models.StatusError || snap.ErrorKind != "PermissionDenied" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Message != "Location access denied by user." {
		t.Errorf("message = %q", snap.Message)
	}
	if snap.Position == nil || snap.Position.Lat != -16.92 {
		t.Errorf("prior position lost: %+v", snap.Position)
	}

	// no reading and no fallback sensor
	ts.do(t, http.MethodPost, "/api/v1/position/locate", "", &snap)
	if snap.ErrorKind != "CapabilityUnavailable" {
		t.Errorf("error kind = %q", snap.ErrorKind)
	}
}

func TestClickFlow(t *testing.T) {
	ts := newTestServer(t)

	var res services.TerritoryResolution
	resp := ts.do(t, http.MethodPost, "/api/v1/clicks/territory/yidinji", "", &res)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if res.Selected == nil || res.Selected.ID != "apunipima-head-office" {
		t.Errorf("selected = %+v", res.Selected)
	}
	if len(res.Candidates) != 3 {
		t.Errorf("candidates = %d", len(res.Candidates))
	}

	resp = ts.do(t, http.MethodPost, "/api/v1/clicks/territory/atlantis", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("unknown territory status = %d, want 204", resp.StatusCode)
	}

	state := ts.state(t, http.MethodPost, "/api/v1/clicks/drone/drone-002")
	if state.Selection.Kind != models.SelectionDrone || state.Drone == nil || state.Drone.ID != "drone-002" {
		t.Errorf("state = %+v", state)
	}
	if state.Selection.LastTerritoryID != "yidinji" {
		t.Errorf("last territory = %q", state.Selection.LastTerritoryID)
	}

	resp = ts.do(t, http.MethodPost, "/api/v1/clicks/service/nope", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("unknown service status = %d", resp.StatusCode)
	}

	state = ts.state(t, http.MethodPost, "/api/v1/selection/close")
	if state.Selection.Kind != models.SelectionNone || state.Selection.LastTerritoryID != "yidinji" {
		t.Errorf("after close = %+v", state.Selection)
	}
	if state.Drone != nil {
		t.Errorf("drone still attached after close: %+v", state.Drone)
	}

	state = ts.state(t, http.MethodPost, "/api/v1/resource-request/open")
	if state.Selection.Overlay != models.OverlayResourceRequest {
		t.Errorf("overlay = %q", state.Selection.Overlay)
	}
	if state.Territory == nil || state.Territory.ID != "yidinji" {
		t.Errorf("form prefill territory = %+v", state.Territory)
	}
	state = ts.state(t, http.MethodPost, "/api/v1/resource-request/close")
	if state.Selection.Overlay != models.OverlayNone || state.Selection.LastTerritoryID != "" {
		t.Errorf("after closing form = %+v", state.Selection)
	}

	if got := testutil.ToFloat64(ts.metrics.Clicks.WithLabelValues("territory", "unknown")); got != 1 {
		t.Errorf("unknown territory clicks = %v", got)
	}
}

func TestRenderLayers(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/clicks/service/cairns-hospital", "", nil)

	var layers struct {
		Services struct {
			Features []struct {
				ID         string         `json:"id"`
				Properties map[string]any `json:"properties"`
			} `json:"features"`
		} `json:"services"`
		User json.RawMessage `json:"user"`
	}
	ts.do(t, http.MethodGet, "/api/v1/render", "", &layers)
	for _, f := range layers.Services.Features {
		if sel, _ := f.Properties["selected"].(bool); sel != (f.ID == "cairns-hospital") {
			t.Errorf("feature %s selected = %v", f.ID, sel)
		}
	}
	if len(layers.User) != 0 && string(layers.User) != "null" {
		t.Errorf("user feature present before any resolution: %s", layers.User)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/api/v1/layers/drones", "", nil)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `healthmap_http_requests_total{code="200",method="GET",route="/api/v1/layers/drones"}`) {
		t.Errorf("metrics output missing drone layer request:\n%s", body)
	}
}
