// Package engine implements the discovery synchronization engine: the
// component that keeps the client-side universe graph correct under three
// concurrent update sources.
//
// # Update Sources
//
// Three writers feed the engine, in strict precedence order:
//
//  1. Full refresh: an authoritative snapshot fetched from the server. It
//     wins over everything: local optimistic writes are provisional and are
//     expected to be overwritten by the next refresh.
//  2. Push events: discrete typed events from the push channel
//     (region-discovered, evolution-tick, map-expanded), applied as partial
//     updates against entities that already exist in the store.
//  3. Optimistic mutations: local provisional writes applied for instant
//     UI feedback, explicitly subject to overwrite by (1).
//
// The precedence rule lives entirely in the Reconciler; no other component
// writes to the store. Because reveal state and progress are monotonic and
// evolution deltas are bounded-additive, reordering between sources cannot
// corrupt invariants, only shift exact numeric values by a clamped amount.
//
// # Scheduling
//
// The Scheduler owns the adaptive polling loop: a short cadence while
// discoveries are recent, a long one once the session has gone idle. A
// failed poll is logged and never changes cadence; the next scheduled
// attempt is the recovery mechanism.
//
// # Write Side
//
// The Engine exposes the activity-recording API (RecordInteraction,
// RecordChainCompleted, RecordError) plus the debug reveal escape hatches.
// Each recorded activity posts to the authoritative server best-effort and
// immediately triggers a progress re-check so the UI converges without
// waiting for the next scheduled tick.
package engine
