package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/engine"
)

func TestFetchGraph(t *testing.T) {
	g := domain.NewGraph()
	g.AddRegion(domain.NewRegion("alpha", "Alpha", domain.LayerPlatform))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/universe", r.URL.Path)
		json.NewEncoder(w).Encode(g)
	}))
	defer srv.Close()

	got, err := New(srv.URL).FetchGraph(context.Background(), "s1")
	require.NoError(t, err)
	require.Contains(t, got.Regions, "alpha")
	assert.Equal(t, "Alpha", got.Regions["alpha"].Label)
}

func TestFetchDiscoveryProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/universe/discovery/progress/s1", r.URL.Path)
		json.NewEncoder(w).Encode(engine.ProgressReport{
			Progress:     map[string]float64{"alpha": 92.5},
			ReadyRegions: []string{"beta"},
		})
	}))
	defer srv.Close()

	report, err := New(srv.URL).FetchDiscoveryProgress(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 92.5, report.Progress["alpha"])
	assert.Equal(t, []string{"beta"}, report.ReadyRegions)
}

func TestFetchSchedulerConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/universe/discovery/config", r.URL.Path)
		json.NewEncoder(w).Encode(discoveryConfigResponse{
			ActiveIntervalMS: 5000,
			IdleThresholdMS:  120000,
		})
	}))
	defer srv.Close()

	cfg, err := New(srv.URL).FetchSchedulerConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.ActiveInterval)
	assert.Equal(t, 2*time.Minute, cfg.IdleThreshold)
	// Unset fields keep the default
	assert.Equal(t, engine.DefaultSchedulerConfig().IdleInterval, cfg.IdleInterval)
}

func TestPostActivity(t *testing.T) {
	var got activityRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/universe/discovery/record", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := New(srv.URL).PostActivity(context.Background(), "s1",
		engine.ActivityChainCompleted, engine.ActivityContext{ChainID: "chain-7"})
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "chain_completed", got.Kind)
	assert.Equal(t, "chain-7", got.ChainID)
}

func TestPostRevealRoutes(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.PostReveal(context.Background(), "s1", "alpha"))
	require.NoError(t, c.PostReveal(context.Background(), "s1", engine.RevealAllTarget))

	assert.Equal(t, []string{
		"/api/universe/discovery/reveal/alpha",
		"/api/universe/discovery/reveal-all",
	}, paths)
}

func TestNonSuccessStatusIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "universe not seeded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).FetchGraph(context.Background(), "s1")
	require.Error(t, err)

	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Error(), "503")
}

func TestConnectionRefusedIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL).FetchGraph(context.Background(), "s1")
	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
}
