// Package domain defines the core domain types for the Cosmograph discovery
// engine.
//
// This package contains the fundamental entities that represent the universe
// map: regions, the bridges connecting them, and the presentational evolution
// state that accumulates on both.
//
// # Core Types
//
// Region represents an unlockable area of the map with a fog-of-war reveal
// state, a discovery progress percentage, and visual evolution fields.
//
// Bridge represents a connection between two regions whose strength, heat and
// trace history reflect how often the path has been traversed.
//
// Graph is the root aggregate holding all regions and bridges. Its topology
// is fixed for the lifetime of a session: regions and bridges are never
// removed, only the mutable fields inside them change.
//
// # Reveal State Machine
//
// NextRevealState derives the fog-of-war state from discovery progress. It is
// a pure function and idempotent, which is what keeps duplicate event
// delivery safe for the reconciliation layer.
//
// # Evolution
//
// ApplyRegionDelta and ApplyBridgeDelta merge bounded numeric deltas into a
// region's or bridge's evolution fields. Every field is clamped to its valid
// range before any renderer sees it; exceeding a bound pins at the bound.
//
// # Design Principles
//
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
// - All numeric invariants enforced at this layer, not by callers
package domain
