package domain

import (
	"fmt"
	"sort"
	"time"
)

// GraphMetadata holds universe-level metadata. GeneratedAt is an opaque
// creation timestamp used only as a deterministic presentation seed.
type GraphMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
}

// Graph is the root aggregate: all regions and the bridges connecting them.
// Within a session the topology only grows; regions and bridges are never
// deleted, only their mutable fields change.
type Graph struct {
	Regions  map[string]*Region `json:"regions"`
	Bridges  map[string]*Bridge `json:"bridges"`
	Metadata GraphMetadata      `json:"metadata"`
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Regions:  make(map[string]*Region),
		Bridges:  make(map[string]*Bridge),
		Metadata: GraphMetadata{GeneratedAt: time.Now()},
	}
}

// AddRegion inserts a region into the graph
func (g *Graph) AddRegion(r *Region) {
	g.Regions[r.ID] = r
}

// AddBridge inserts a bridge into the graph
func (g *Graph) AddBridge(b *Bridge) {
	g.Bridges[b.ID] = b
}

// Validate checks the graph's structural invariants: every bridge endpoint
// must resolve to a region present in the graph, and no bridge may connect a
// region to itself.
func (g *Graph) Validate() error {
	for id, r := range g.Regions {
		if r == nil {
			return NewValidationError(fmt.Sprintf("region %s is nil", id))
		}
		if r.ID != id {
			return NewValidationError(fmt.Sprintf("region key %s does not match id %s", id, r.ID))
		}
	}
	for id, b := range g.Bridges {
		if b == nil {
			return NewValidationError(fmt.Sprintf("bridge %s is nil", id))
		}
		if b.Source == b.Target {
			return NewValidationError(fmt.Sprintf("bridge %s connects region %s to itself", id, b.Source))
		}
		if _, ok := g.Regions[b.Source]; !ok {
			return NewValidationError(fmt.Sprintf("bridge %s references unknown source region %s", id, b.Source))
		}
		if _, ok := g.Regions[b.Target]; !ok {
			return NewValidationError(fmt.Sprintf("bridge %s references unknown target region %s", id, b.Target))
		}
	}
	return nil
}

// Clone returns a deep copy of the graph
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Regions:  make(map[string]*Region, len(g.Regions)),
		Bridges:  make(map[string]*Bridge, len(g.Bridges)),
		Metadata: g.Metadata,
	}
	for id, r := range g.Regions {
		c.Regions[id] = r.Clone()
	}
	for id, b := range g.Bridges {
		c.Bridges[id] = b.Clone()
	}
	return c
}

// ProgressView derives the read-only RegionID to progress projection. It is
// computed from the regions at the moment of the call, never stored.
func (g *Graph) ProgressView() map[string]float64 {
	view := make(map[string]float64, len(g.Regions))
	for id, r := range g.Regions {
		view[id] = r.DiscoveryProgress
	}
	return view
}

// NearDiscoveryRegions returns region ids with progress in [90,100), sorted
// by descending progress. Ties break on id for a stable order.
func (g *Graph) NearDiscoveryRegions() []string {
	var ids []string
	for id, r := range g.Regions {
		if r.NearDiscovery() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := g.Regions[ids[i]].DiscoveryProgress, g.Regions[ids[j]].DiscoveryProgress
		if pi != pj {
			return pi > pj
		}
		return ids[i] < ids[j]
	})
	return ids
}
