package engine

import (
	"context"

	"github.com/bekalpaslan/cosmograph/internal/domain"
)

// ActivityKind identifies the kind of recorded activity
type ActivityKind string

const (
	ActivityInteraction    ActivityKind = "interaction"
	ActivityChainCompleted ActivityKind = "chain_completed"
	ActivityError          ActivityKind = "error"
)

// RevealAllTarget is the reveal target that addresses every region
const RevealAllTarget = "all"

// ActivityContext carries optional context for a recorded activity
type ActivityContext struct {
	Context string `json:"context,omitempty"`
	ChainID string `json:"chain_id,omitempty"`
}

// ProgressReport is the authoritative discovery progress for a session
type ProgressReport struct {
	Progress     map[string]float64 `json:"progress"`
	ReadyRegions []string           `json:"ready_regions"`
}

// Backend is the authoritative collaborator the engine syncs against.
// Implementations must return a TransportError (or an error wrapping one)
// on non-success so the engine can treat the failure as recoverable.
type Backend interface {
	// FetchGraph returns the full authoritative universe snapshot
	FetchGraph(ctx context.Context, sessionID string) (*domain.Graph, error)

	// FetchDiscoveryProgress returns server-computed progress per region
	FetchDiscoveryProgress(ctx context.Context, sessionID string) (*ProgressReport, error)

	// PostActivity records an activity. Fire-and-forget from the engine's
	// perspective: the subsequent poll supplies any state update.
	PostActivity(ctx context.Context, sessionID string, kind ActivityKind, activity ActivityContext) error

	// PostReveal reveals a single region, or all of them when target is
	// RevealAllTarget
	PostReveal(ctx context.Context, sessionID, target string) error
}
