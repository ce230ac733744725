package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/repository/sqlite"
	"github.com/bekalpaslan/cosmograph/internal/service"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Repository) {
	t.Helper()

	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	g := domain.NewGraph()
	g.AddRegion(domain.NewRegion("alpha", "Alpha", domain.LayerPlatform))
	g.AddRegion(domain.NewRegion("beta", "Beta", domain.LayerPhysics))
	g.AddBridge(domain.NewBridge("alpha", "beta"))
	if err := repo.ImportGraph(context.Background(), g); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	bus := service.NewEventBus()
	universe := service.NewUniverseService(repo, bus)
	discovery := service.NewDiscoveryService(repo, bus, nil)

	mux := http.NewServeMux()
	NewUniverseHandler(universe, discovery).Routes(mux)

	srv := httptest.NewServer(Chain(mux, Recover, CORS, Logger))
	t.Cleanup(srv.Close)
	return srv, repo
}

func TestGetUniverse(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/universe")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var graph domain.Graph
	if err := json.NewDecoder(resp.Body).Decode(&graph); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(graph.Regions) != 2 {
		t.Errorf("expected 2 regions, got %d", len(graph.Regions))
	}
	if len(graph.Bridges) != 1 {
		t.Errorf("expected 1 bridge, got %d", len(graph.Bridges))
	}
}

func TestGetRegionWithHealthScore(t *testing.T) {
	srv, repo := newTestServer(t)

	region, _ := repo.GetRegion(context.Background(), "alpha")
	region.Health = &domain.Health{ContractCompliance: 1, ActivityLevel: 1, ErrorRate: 0}
	if err := repo.UpsertRegion(context.Background(), region); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	resp, err := http.Get(srv.URL + "/api/universe/regions/alpha")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body RegionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.ID != "alpha" {
		t.Errorf("expected region alpha, got %q", body.ID)
	}
	if body.HealthScore == nil || *body.HealthScore != 1 {
		t.Errorf("expected health score 1, got %v", body.HealthScore)
	}
}

func TestGetRegionNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/universe/regions/ghost")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRecordActivityAndProgress(t *testing.T) {
	srv, repo := newTestServer(t)

	trigger := &domain.DiscoveryTrigger{
		RegionID:  "alpha",
		Condition: domain.TriggerCondition{Type: domain.TriggerInteractionCount, Threshold: 2},
	}
	if err := repo.SaveTrigger(context.Background(), trigger); err != nil {
		t.Fatalf("save trigger failed: %v", err)
	}

	record := func(body string) *http.Response {
		resp, err := http.Post(srv.URL+"/api/universe/discovery/record", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		return resp
	}

	if resp := record(`{"session_id":"s1","kind":"interaction"}`); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp := record(`{"session_id":"s1","kind":"interaction"}`); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/api/universe/discovery/progress/s1")
	if err != nil {
		t.Fatalf("progress request failed: %v", err)
	}
	defer resp.Body.Close()

	var report service.ProgressReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if report.Progress["alpha"] != domain.FullProgress {
		t.Errorf("expected alpha at 100, got %f", report.Progress["alpha"])
	}
	if len(report.ReadyRegions) != 1 || report.ReadyRegions[0] != "alpha" {
		t.Errorf("expected ready [alpha], got %v", report.ReadyRegions)
	}
}

func TestRecordActivityRejectsBadKind(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/universe/discovery/record", "application/json",
		strings.NewReader(`{"session_id":"s1","kind":"teleport"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRecordActivityRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/universe/discovery/record", "application/json",
		strings.NewReader(`{"kind":"interaction"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRevealRegion(t *testing.T) {
	srv, repo := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/universe/discovery/reveal/beta", "application/json",
		strings.NewReader(`{"session_id":"s1"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	region, _ := repo.GetRegion(context.Background(), "beta")
	if region.RevealState != domain.RevealRevealed {
		t.Errorf("expected revealed, got %s", region.RevealState)
	}
}

func TestRevealUnknownRegion(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/universe/discovery/reveal/ghost", "application/json",
		strings.NewReader(`{"session_id":"s1"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Error == "" {
		t.Error("expected an error message")
	}
}

func TestRevealAll(t *testing.T) {
	srv, repo := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/universe/discovery/reveal-all", "application/json",
		strings.NewReader(`{"session_id":"s1"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	graph, _ := repo.GetGraph(context.Background())
	for id, region := range graph.Regions {
		if region.RevealState != domain.RevealRevealed {
			t.Errorf("region %s not revealed", id)
		}
	}
}

func TestGetDiscoveryConfig(t *testing.T) {
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	bus := service.NewEventBus()
	h := NewUniverseHandler(service.NewUniverseService(repo, bus), service.NewDiscoveryService(repo, bus, nil))
	h.SetDiscoveryCadences(10*time.Second, 30*time.Second, 5*time.Minute)

	mux := http.NewServeMux()
	h.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/universe/discovery/config")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body DiscoveryConfigResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.ActiveIntervalMS != 10000 {
		t.Errorf("expected active interval 10000ms, got %d", body.ActiveIntervalMS)
	}
	if body.IdleIntervalMS != 30000 {
		t.Errorf("expected idle interval 30000ms, got %d", body.IdleIntervalMS)
	}
	if body.IdleThresholdMS != 300000 {
		t.Errorf("expected idle threshold 300000ms, got %d", body.IdleThresholdMS)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/universe", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}
