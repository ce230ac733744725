// Package events defines the typed push events exchanged between the
// authoritative server and the sync engine, plus their wire envelope.
//
// The three event kinds form a closed union. Payload shape is validated at
// the boundary so malformed or out-of-range events never reach the
// reconciliation layer.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/bekalpaslan/cosmograph/internal/domain"
)

// Kind is the wire name of a push event
type Kind string

const (
	KindRegionDiscovered Kind = "universe:region_discovered"
	KindEvolutionTick    Kind = "universe:evolution_tick"
	KindMapExpanded      Kind = "universe:map_expanded"
)

// Event is the closed union of push events
type Event interface {
	Kind() Kind
	Validate() error
}

// RegionDiscovered announces that the server has decided a region is fully
// discovered. It carries absolute values and is therefore idempotent.
type RegionDiscovered struct {
	RegionID  string `json:"region_id"`
	SessionID string `json:"session_id,omitempty"`
}

func (RegionDiscovered) Kind() Kind { return KindRegionDiscovered }

// Validate checks the payload shape
func (e RegionDiscovered) Validate() error {
	if e.RegionID == "" {
		return domain.NewValidationError("region_discovered event missing region id")
	}
	return nil
}

// RegionUpdate is one region entry of an evolution tick batch
type RegionUpdate struct {
	RegionID string             `json:"region_id"`
	Delta    domain.RegionDelta `json:"delta"`
}

// BridgeUpdate is one bridge entry of an evolution tick batch
type BridgeUpdate struct {
	BridgeID string             `json:"bridge_id"`
	Delta    domain.BridgeDelta `json:"delta"`
}

// EvolutionTick carries a batch of additive evolution deltas. Deltas are not
// naturally idempotent; at-least-once delivery can double-count a bounded,
// clamped amount of drift, which is accepted.
type EvolutionTick struct {
	TickID        string         `json:"tick_id"`
	SessionID     string         `json:"session_id,omitempty"`
	RegionUpdates []RegionUpdate `json:"region_updates,omitempty"`
	BridgeUpdates []BridgeUpdate `json:"bridge_updates,omitempty"`
}

func (EvolutionTick) Kind() Kind { return KindEvolutionTick }

// Validate checks ids are present and numeric fields are within the
// magnitudes a single tick may carry.
func (e EvolutionTick) Validate() error {
	for _, u := range e.RegionUpdates {
		if u.RegionID == "" {
			return domain.NewValidationError("evolution_tick region update missing region id")
		}
		if u.Delta.SaturationDelta < -1 || u.Delta.SaturationDelta > 1 {
			return domain.NewValidationError(fmt.Sprintf("saturation delta %f out of range for region %s", u.Delta.SaturationDelta, u.RegionID))
		}
		if u.Delta.TemperatureDelta < -1 || u.Delta.TemperatureDelta > 1 {
			return domain.NewValidationError(fmt.Sprintf("temperature delta %f out of range for region %s", u.Delta.TemperatureDelta, u.RegionID))
		}
	}
	for _, u := range e.BridgeUpdates {
		if u.BridgeID == "" {
			return domain.NewValidationError("evolution_tick bridge update missing bridge id")
		}
		if u.Delta.StrengthIncrement < 0 || u.Delta.StrengthIncrement > 1 {
			return domain.NewValidationError(fmt.Sprintf("strength increment %f out of range for bridge %s", u.Delta.StrengthIncrement, u.BridgeID))
		}
	}
	return nil
}

// MapExpanded signals that new regions or bridges exist on the server. The
// engine responds with a full refresh rather than incremental insertion, so
// referential integrity is never violated by ordering.
type MapExpanded struct {
	NewRegionID string `json:"new_region_id,omitempty"`
}

func (MapExpanded) Kind() Kind { return KindMapExpanded }

// Validate always succeeds; the payload is advisory
func (MapExpanded) Validate() error { return nil }

// Envelope is the wire framing for push events
type Envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Marshal wraps an event in its envelope for transmission
func Marshal(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.Kind(), err)
	}
	return json.Marshal(Envelope{Type: ev.Kind(), Payload: payload})
}

// Parse decodes and validates a wire envelope. Unknown kinds return an
// error the caller is expected to log and skip; the push channel may carry
// event kinds this engine does not consume.
func Parse(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	var ev Event
	switch env.Type {
	case KindRegionDiscovered:
		var e RegionDiscovered
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		ev = e
	case KindEvolutionTick:
		var e EvolutionTick
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		ev = e
	case KindMapExpanded:
		var e MapExpanded
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		ev = e
	default:
		return nil, fmt.Errorf("unknown event kind %q", env.Type)
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}
