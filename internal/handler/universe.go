package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/service"
)

// UniverseHandler handles universe API requests
type UniverseHandler struct {
	universe  *service.UniverseService
	discovery *service.DiscoveryService

	activeInterval time.Duration
	idleInterval   time.Duration
	idleThreshold  time.Duration
}

// NewUniverseHandler creates a new universe handler
func NewUniverseHandler(universe *service.UniverseService, discovery *service.DiscoveryService) *UniverseHandler {
	return &UniverseHandler{
		universe:  universe,
		discovery: discovery,
	}
}

// SetDiscoveryCadences advertises polling cadences to clients. Zero values
// are omitted from the response and clients fall back to their defaults.
func (h *UniverseHandler) SetDiscoveryCadences(active, idle, threshold time.Duration) {
	h.activeInterval = active
	h.idleInterval = idle
	h.idleThreshold = threshold
}

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Routes registers the handler's endpoints on the mux
func (h *UniverseHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/universe", h.GetUniverse)
	mux.HandleFunc("GET /api/universe/regions/{region}", h.GetRegion)
	mux.HandleFunc("GET /api/universe/discovery/config", h.GetDiscoveryConfig)
	mux.HandleFunc("GET /api/universe/discovery/progress/{session}", h.GetProgress)
	mux.HandleFunc("POST /api/universe/discovery/record", h.RecordActivity)
	mux.HandleFunc("POST /api/universe/discovery/reveal/{region}", h.RevealRegion)
	mux.HandleFunc("POST /api/universe/discovery/reveal-all", h.RevealAll)
}

// GetUniverse returns the complete universe graph
func (h *UniverseHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	graph, err := h.universe.GetGraph(r.Context())
	if err != nil {
		log.Printf("Failed to get universe: %v", err)
		h.writeError(w, "Failed to get universe", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, graph, http.StatusOK)
}

// RegionResponse is a region plus its derived health score
type RegionResponse struct {
	*domain.Region
	HealthScore *float64 `json:"health_score,omitempty"`
}

// GetRegion returns a single region with its combined health score
func (h *UniverseHandler) GetRegion(w http.ResponseWriter, r *http.Request) {
	regionID := r.PathValue("region")
	if regionID == "" {
		h.writeError(w, "Invalid region", "Region ID is required", http.StatusBadRequest)
		return
	}

	region, err := h.universe.GetRegion(r.Context(), regionID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			h.writeError(w, "Not found", nf.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to get region %s: %v", regionID, err)
		h.writeError(w, "Failed to get region", err.Error(), http.StatusInternalServerError)
		return
	}

	resp := RegionResponse{Region: region}
	if region.Health != nil {
		score := region.Health.Score()
		resp.HealthScore = &score
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// DiscoveryConfigResponse advertises the polling cadences clients should use
type DiscoveryConfigResponse struct {
	ActiveIntervalMS int64 `json:"active_interval_ms,omitempty"`
	IdleIntervalMS   int64 `json:"idle_interval_ms,omitempty"`
	IdleThresholdMS  int64 `json:"idle_threshold_ms,omitempty"`
}

// GetDiscoveryConfig returns the server's advertised polling cadences
func (h *UniverseHandler) GetDiscoveryConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, DiscoveryConfigResponse{
		ActiveIntervalMS: h.activeInterval.Milliseconds(),
		IdleIntervalMS:   h.idleInterval.Milliseconds(),
		IdleThresholdMS:  h.idleThreshold.Milliseconds(),
	}, http.StatusOK)
}

// GetProgress returns the discovery progress for a session
func (h *UniverseHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")
	if sessionID == "" {
		h.writeError(w, "Invalid session", "Session ID is required", http.StatusBadRequest)
		return
	}

	report, err := h.discovery.Progress(r.Context(), sessionID)
	if err != nil {
		log.Printf("Failed to compute progress: %v", err)
		h.writeError(w, "Failed to compute progress", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, report, http.StatusOK)
}

// ActivityRequest is the body of a record call
type ActivityRequest struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Context   string `json:"context,omitempty"`
	ChainID   string `json:"chain_id,omitempty"`
}

// RecordActivity records a session activity for trigger evaluation
func (h *UniverseHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	switch service.ActivityKind(req.Kind) {
	case service.ActivityInteraction, service.ActivityChainCompleted, service.ActivityError:
	default:
		h.writeError(w, "Invalid activity kind", req.Kind, http.StatusBadRequest)
		return
	}

	err := h.discovery.RecordActivity(r.Context(), service.Activity{
		SessionID: req.SessionID,
		Kind:      service.ActivityKind(req.Kind),
		Context:   req.Context,
		ChainID:   req.ChainID,
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			h.writeError(w, "Invalid activity", ve.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Failed to record activity: %v", err)
		h.writeError(w, "Failed to record activity", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RevealRequest is the body of a reveal call
type RevealRequest struct {
	SessionID string `json:"session_id"`
}

// RevealRegion force-reveals a single region
func (h *UniverseHandler) RevealRegion(w http.ResponseWriter, r *http.Request) {
	regionID := r.PathValue("region")
	if regionID == "" {
		h.writeError(w, "Invalid region", "Region ID is required", http.StatusBadRequest)
		return
	}

	var req RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.discovery.Reveal(r.Context(), req.SessionID, regionID); err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			h.writeError(w, "Not found", nf.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to reveal region %s: %v", regionID, err)
		h.writeError(w, "Failed to reveal region", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RevealAll force-reveals every region
func (h *UniverseHandler) RevealAll(w http.ResponseWriter, r *http.Request) {
	var req RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.discovery.RevealAll(r.Context(), req.SessionID); err != nil {
		log.Printf("Failed to reveal all regions: %v", err)
		h.writeError(w, "Failed to reveal all regions", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *UniverseHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *UniverseHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
