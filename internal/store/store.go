// Package store owns the canonical in-memory universe graph on the client
// side. All writers funnel through its narrow write API; readers only ever
// see deep-copied snapshots, so the rendering layer can never mutate shared
// state.
package store

import (
	"log"
	"sync"
	"time"

	"github.com/bekalpaslan/cosmograph/internal/domain"
)

// RegionPatch is a partial, field-level region update. Nil fields are left
// untouched. Progress and reveal state are merged monotonically: a patch can
// never move them backwards; only a full ReplaceAll can do that.
type RegionPatch struct {
	DiscoveryProgress *float64
	RevealState       *domain.RevealState
	Status            *domain.RegionStatus
	LastActiveAt      *time.Time
}

// Store holds the single shared graph. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	graph *domain.Graph
	ready bool
}

// New creates an empty store. The store reports not-ready until the first
// successful ReplaceAll, which is how the rendering layer distinguishes
// "graph unavailable" from "nothing discovered yet".
func New() *Store {
	return &Store{graph: domain.NewGraph()}
}

// Ready reports whether an authoritative graph has been loaded
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// ReplaceAll atomically replaces the entire graph with an authoritative
// snapshot. The incoming graph is validated first; on failure the store
// keeps its previous state and returns a ValidationError.
func (s *Store) ReplaceAll(g *domain.Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	clone := g.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = clone
	s.ready = true
	return nil
}

// ApplyRegionPatch merges a partial update into a region. Unknown ids are
// logged and dropped, since out-of-order delivery of events for not-yet-
// fetched regions must not crash the pipeline. Returns whether the patch
// was applied.
func (s *Store) ApplyRegionPatch(id string, p RegionPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	region, ok := s.graph.Regions[id]
	if !ok {
		log.Printf("Dropping patch for unknown region %s", id)
		return false
	}

	if p.DiscoveryProgress != nil {
		next := domain.ClampProgress(*p.DiscoveryProgress)
		if next > region.DiscoveryProgress {
			region.DiscoveryProgress = next
		}
		region.RevealState = domain.NextRevealState(region.RevealState, region.DiscoveryProgress)
	}
	if p.RevealState != nil {
		region.RevealState = domain.ForwardRevealState(region.RevealState, *p.RevealState)
		if region.RevealState == domain.RevealRevealed && region.DiscoveredAt == nil {
			now := time.Now()
			region.DiscoveredAt = &now
		}
	}
	if p.Status != nil {
		region.Status = *p.Status
	}
	if p.LastActiveAt != nil {
		t := *p.LastActiveAt
		region.LastActiveAt = &t
	}
	return true
}

// ApplyRegionDelta runs the evolution applier on a region. Unknown ids are
// skipped, not queued. Returns whether the delta was applied.
func (s *Store) ApplyRegionDelta(id string, d domain.RegionDelta) bool {
	if d.IsZero() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	region, ok := s.graph.Regions[id]
	if !ok {
		log.Printf("Dropping evolution delta for unknown region %s", id)
		return false
	}
	domain.ApplyRegionDelta(region, d)
	return true
}

// ApplyBridgeDelta runs the evolution applier on a bridge. Unknown ids are
// skipped, not queued. Returns whether the delta was applied.
func (s *Store) ApplyBridgeDelta(id string, d domain.BridgeDelta) bool {
	if d.IsZero() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bridge, ok := s.graph.Bridges[id]
	if !ok {
		log.Printf("Dropping evolution delta for unknown bridge %s", id)
		return false
	}
	domain.ApplyBridgeDelta(bridge, d)
	return true
}

// Snapshot returns a deep copy of the current graph for the read side, or
// nil before the first authoritative load. A nil snapshot is the graph
// unavailable signal; an empty graph would be indistinguishable from a
// loaded universe with no regions.
func (s *Store) Snapshot() *domain.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil
	}
	return s.graph.Clone()
}

// ProgressView derives the region-to-progress projection at the moment of
// the call
func (s *Store) ProgressView() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.ProgressView()
}

// IsRegionAccessible reports whether a region is fully revealed
func (s *Store) IsRegionAccessible(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	region, ok := s.graph.Regions[id]
	return ok && region.RevealState == domain.RevealRevealed
}

// NearDiscoveryRegions returns region ids in the [90,100) progress band,
// sorted by descending progress
func (s *Store) NearDiscoveryRegions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.NearDiscoveryRegions()
}

// RegionIDs returns the ids of all regions currently in the graph
func (s *Store) RegionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.graph.Regions))
	for id := range s.graph.Regions {
		ids = append(ids, id)
	}
	return ids
}
