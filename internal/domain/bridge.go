package domain

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TraceHistoryCap bounds the per-bridge trace history. Oldest entries are
// evicted once the cap is exceeded.
const TraceHistoryCap = 10

// TraceResult is the outcome of a recorded traversal
type TraceResult string

const (
	TraceSuccess TraceResult = "success"
	TraceFailure TraceResult = "failure"
	TracePartial TraceResult = "partial"
)

// TraceRecord is a single recorded traversal of a bridge
type TraceRecord struct {
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"session_id"`
	ChainID   string      `json:"chain_id"`
	Result    TraceResult `json:"result"`
}

// Bridge represents a connection between two regions. Source and Target are
// immutable; the remaining fields evolve as the path is traversed.
type Bridge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`

	// Strength in [0,1], non-decreasing except via the administrative reset
	Strength float64 `json:"strength"`

	TraversalCount int `json:"traversal_count"`

	// TraceHistory is insertion-ordered most-recent-first, capped at
	// TraceHistoryCap entries
	TraceHistory []TraceRecord `json:"trace_history,omitempty"`

	// HeatLevel in [0,1], saturating at 1.0
	HeatLevel float64 `json:"heat_level"`

	LastTraversed *time.Time `json:"last_traversed,omitempty"`
}

// NewBridge creates a bridge between two regions with a deterministic ID
func NewBridge(source, target string) *Bridge {
	b := &Bridge{
		Source: source,
		Target: target,
	}
	b.ID = b.GenerateID()
	return b
}

// GenerateID creates a deterministic ID for the bridge based on endpoints
func (b *Bridge) GenerateID() string {
	// Normalize endpoints for consistent ID
	from, to := b.Source, b.Target
	if from > to {
		from, to = to, from
	}

	key := fmt.Sprintf("%s-%s", from, to)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}

// Clone returns a deep copy of the bridge
func (b *Bridge) Clone() *Bridge {
	c := *b
	if b.TraceHistory != nil {
		c.TraceHistory = make([]TraceRecord, len(b.TraceHistory))
		copy(c.TraceHistory, b.TraceHistory)
	}
	if b.LastTraversed != nil {
		t := *b.LastTraversed
		c.LastTraversed = &t
	}
	return &c
}
