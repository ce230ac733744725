package domain

import "time"

// RegionLayer identifies which layer of the system a region belongs to
type RegionLayer string

const (
	LayerPlatform   RegionLayer = "platform"
	LayerTemplate   RegionLayer = "template"
	LayerPhilosophy RegionLayer = "philosophy"
	LayerPhysics    RegionLayer = "physics"
	LayerExperience RegionLayer = "experience"
)

// RegionStatus represents the current activity status of a region
type RegionStatus string

const (
	RegionStatusIdle         RegionStatus = "idle"
	RegionStatusActive       RegionStatus = "active"
	RegionStatusWaiting      RegionStatus = "waiting"
	RegionStatusUndiscovered RegionStatus = "undiscovered"
)

// Region represents an unlockable area on the universe map
type Region struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	Layer       RegionLayer `json:"layer"`

	// Fog-of-war fields. DiscoveryProgress is a percentage in [0,100] and is
	// non-decreasing except through the administrative reveal/reset path.
	RevealState       RevealState `json:"reveal_state"`
	DiscoveryProgress float64     `json:"discovery_progress"`

	// Visual evolution state, bounds enforced by ApplyRegionDelta
	Evolution Evolution `json:"evolution"`

	// Optional health ratios, combined into a single score on read
	Health *Health `json:"health,omitempty"`

	Status       RegionStatus `json:"status"`
	DiscoveredAt *time.Time   `json:"discovered_at,omitempty"`
	LastActiveAt *time.Time   `json:"last_active_at,omitempty"`
	SessionCount int          `json:"session_count"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewRegion creates a hidden region with default evolution state
func NewRegion(id, label string, layer RegionLayer) *Region {
	return &Region{
		ID:          id,
		Label:       label,
		Layer:       layer,
		RevealState: RevealHidden,
		Status:      RegionStatusUndiscovered,
		Evolution:   NewEvolution(DefaultBaseColor),
	}
}

// NearDiscovery reports whether the region is close to being revealed but
// not there yet. Used by the read side to drive UI hints.
func (r *Region) NearDiscovery() bool {
	return r.DiscoveryProgress >= NearDiscoveryThreshold && r.DiscoveryProgress < FullProgress
}

// Clone returns a deep copy of the region
func (r *Region) Clone() *Region {
	c := *r
	if r.Health != nil {
		h := *r.Health
		c.Health = &h
	}
	if r.DiscoveredAt != nil {
		t := *r.DiscoveredAt
		c.DiscoveredAt = &t
	}
	if r.LastActiveAt != nil {
		t := *r.LastActiveAt
		c.LastActiveAt = &t
	}
	if r.Metadata != nil {
		c.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
