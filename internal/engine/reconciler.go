package engine

import (
	"log"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/events"
	"github.com/bekalpaslan/cosmograph/internal/store"
)

// Reconciler merges the three update sources into the single owned store.
// It is the only writer; precedence is authoritative > push-event >
// optimistic, enforced by construction: refreshes replace wholesale while
// the other two sources go through monotonic patches and clamped deltas.
type Reconciler struct {
	store *store.Store

	// requestRefresh triggers an asynchronous full refresh. Set by the
	// engine; used when an event signals state that cannot be applied
	// incrementally.
	requestRefresh func()
}

// NewReconciler creates a reconciler writing to the given store
func NewReconciler(s *store.Store) *Reconciler {
	return &Reconciler{store: s, requestRefresh: func() {}}
}

// SetRefreshFunc wires the full-refresh trigger
func (r *Reconciler) SetRefreshFunc(fn func()) {
	if fn != nil {
		r.requestRefresh = fn
	}
}

// ApplyRefresh applies an authoritative full snapshot. The refresh wins over
// any pending optimistic state for every field it carries, including
// regressions of locally revealed regions.
func (r *Reconciler) ApplyRefresh(g *domain.Graph) error {
	return r.store.ReplaceAll(g)
}

// ApplyEvent applies a single validated push event. Applying the same event
// twice is safe: region-discovered sets absolute values, and evolution-tick
// double-counting is bounded by the clamps (the accepted drift of
// at-least-once delivery; deltas carry no idempotency key).
func (r *Reconciler) ApplyEvent(ev events.Event) {
	switch e := ev.(type) {
	case events.RegionDiscovered:
		progress := domain.FullProgress
		revealed := domain.RevealRevealed
		r.store.ApplyRegionPatch(e.RegionID, store.RegionPatch{
			DiscoveryProgress: &progress,
			RevealState:       &revealed,
		})

	case events.EvolutionTick:
		applied := 0
		for _, u := range e.RegionUpdates {
			if r.store.ApplyRegionDelta(u.RegionID, u.Delta) {
				applied++
			}
		}
		for _, u := range e.BridgeUpdates {
			if r.store.ApplyBridgeDelta(u.BridgeID, u.Delta) {
				applied++
			}
		}
		if applied > 0 {
			log.Printf("Applied evolution tick %s to %d entities", e.TickID, applied)
		}

	case events.MapExpanded:
		// New topology cannot be inserted incrementally without risking
		// bridges that precede their endpoint regions; pull the whole graph.
		log.Printf("Map expanded (new region %q), requesting full refresh", e.NewRegionID)
		r.requestRefresh()

	default:
		log.Printf("Ignoring unhandled event kind %s", ev.Kind())
	}
}

// ApplyProgress merges a polled progress report. Returns the regions that
// became accessible through this report, so the caller can reset the
// adaptive cadence.
func (r *Reconciler) ApplyProgress(report *ProgressReport) []string {
	if report == nil {
		return nil
	}

	var newlyRevealed []string
	seen := make(map[string]struct{})

	for id, progress := range report.Progress {
		p := progress
		wasAccessible := r.store.IsRegionAccessible(id)
		if !r.store.ApplyRegionPatch(id, store.RegionPatch{DiscoveryProgress: &p}) {
			continue
		}
		// A progress reading of 100 reveals the region on its own; that
		// counts as a discovery even when ReadyRegions omits it.
		if !wasAccessible && r.store.IsRegionAccessible(id) {
			newlyRevealed = append(newlyRevealed, id)
			seen[id] = struct{}{}
		}
	}
	for _, id := range report.ReadyRegions {
		if _, ok := seen[id]; ok {
			continue
		}
		if r.store.IsRegionAccessible(id) {
			continue
		}
		progress := domain.FullProgress
		revealed := domain.RevealRevealed
		if r.store.ApplyRegionPatch(id, store.RegionPatch{
			DiscoveryProgress: &progress,
			RevealState:       &revealed,
		}) {
			newlyRevealed = append(newlyRevealed, id)
		}
	}

	return newlyRevealed
}

// ApplyOptimistic applies a local provisional patch for instant feedback.
// The next authoritative refresh is allowed to overwrite it wholesale.
func (r *Reconciler) ApplyOptimistic(regionID string, patch store.RegionPatch) {
	r.store.ApplyRegionPatch(regionID, patch)
}

// ApplyOptimisticRevealAll marks every known region revealed at full
// progress ahead of the authoritative confirmation
func (r *Reconciler) ApplyOptimisticRevealAll() {
	progress := domain.FullProgress
	revealed := domain.RevealRevealed
	for _, id := range r.store.RegionIDs() {
		p := progress
		s := revealed
		r.store.ApplyRegionPatch(id, store.RegionPatch{DiscoveryProgress: &p, RevealState: &s})
	}
}
