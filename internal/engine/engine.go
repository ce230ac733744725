package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/events"
	"github.com/bekalpaslan/cosmograph/internal/store"
)

// SubscribeFunc attaches a push-event handler for a session. It returns an
// unsubscribe function. The engine subscribes once per active session and
// unsubscribes on session change or teardown.
type SubscribeFunc func(ctx context.Context, sessionID string, handler func(events.Event)) (func(), error)

// Option configures an Engine
type Option func(*Engine)

// WithSchedulerConfig overrides the adaptive polling cadences
func WithSchedulerConfig(cfg SchedulerConfig) Option {
	return func(e *Engine) { e.schedCfg = cfg }
}

// WithSubscriber wires the push-channel subscription
func WithSubscriber(sub SubscribeFunc) Option {
	return func(e *Engine) { e.subscribe = sub }
}

// Engine is the discovery synchronization engine. It owns the client-side
// graph store and is the only component that writes to it, via the
// Reconciler's three entry points.
type Engine struct {
	backend  Backend
	store    *store.Store
	rec      *Reconciler
	sched    *Scheduler
	schedCfg SchedulerConfig

	subscribe SubscribeFunc

	mu            sync.Mutex
	sessionID     string
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	unsubscribe   func()
	enabled       bool
	dismissed     map[string]struct{}
}

// New creates an engine syncing against the given backend. The engine is
// idle until StartSession is called.
func New(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		backend:   backend,
		store:     store.New(),
		schedCfg:  DefaultSchedulerConfig(),
		enabled:   true,
		dismissed: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.rec = NewReconciler(e.store)
	e.rec.SetRefreshFunc(func() { go e.refreshCurrent() })
	e.sched = NewScheduler(e.schedCfg, e.pollOnce)
	return e
}

// StartSession activates the engine for a session: fetches the initial
// authoritative graph, subscribes to the push channel, and starts the
// adaptive polling loop. Any previous session is torn down first.
//
// A failed initial fetch is returned so the caller can surface the distinct
// "graph unavailable" state, but the session still starts: the polling loop
// keeps retrying and the store reports not-ready until a fetch succeeds.
func (e *Engine) StartSession(ctx context.Context, sessionID string) error {
	e.EndSession()

	sessionCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.sessionID = sessionID
	e.sessionCtx = sessionCtx
	e.sessionCancel = cancel
	e.mu.Unlock()

	if e.subscribe != nil {
		unsub, err := e.subscribe(sessionCtx, sessionID, e.handlePush)
		if err != nil {
			// Polling still converges without the push channel
			log.Printf("Push subscription failed for session %s: %v", sessionID, err)
		} else {
			e.mu.Lock()
			e.unsubscribe = unsub
			e.mu.Unlock()
		}
	}

	e.sched.Start(sessionCtx)

	if err := e.refresh(sessionCtx, sessionID); err != nil {
		log.Printf("Initial graph fetch failed for session %s: %v", sessionID, err)
		return fmt.Errorf("initial graph fetch: %w", err)
	}
	e.checkDiscovery(sessionCtx, sessionID)
	return nil
}

// EndSession deactivates the engine: stops the polling loop, unsubscribes
// from the push channel, and discards in-flight results targeting the old
// session when they arrive.
func (e *Engine) EndSession() {
	e.mu.Lock()
	cancel := e.sessionCancel
	unsub := e.unsubscribe
	e.sessionID = ""
	e.sessionCtx = nil
	e.sessionCancel = nil
	e.unsubscribe = nil
	e.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
	e.sched.Stop()
}

// SetEnabled toggles the discovery feature. While disabled, activity calls
// become no-ops; the graph keeps whatever state it already has.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// Enabled reports whether the discovery feature is on
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// RecordInteraction records a user interaction for discovery progress
func (e *Engine) RecordInteraction(ctx context.Context, interactionContext string) {
	e.record(ctx, ActivityInteraction, ActivityContext{Context: interactionContext})
}

// RecordChainCompleted records a chain completion for discovery triggers
func (e *Engine) RecordChainCompleted(ctx context.Context, chainID string) {
	e.record(ctx, ActivityChainCompleted, ActivityContext{ChainID: chainID})
}

// RecordError records an error event for discovery triggers
func (e *Engine) RecordError(ctx context.Context) {
	e.record(ctx, ActivityError, ActivityContext{})
}

// record posts an activity best-effort and immediately re-checks progress so
// the UI reflects server-computed state without waiting for the next tick.
// A failed post is logged, never surfaced as a blocking error; the next
// scheduled poll corrects the visible state.
func (e *Engine) record(ctx context.Context, kind ActivityKind, activity ActivityContext) {
	sid := e.currentSession()
	if sid == "" || !e.Enabled() {
		return
	}

	if err := e.backend.PostActivity(ctx, sid, kind, activity); err != nil {
		log.Printf("Failed to record %s activity: %v", kind, err)
	}
	e.checkDiscovery(ctx, sid)
}

// RevealRegion reveals a specific region (testing/debug). The reveal is
// applied optimistically before the authoritative call resolves, then a full
// refresh reconciles with ground truth.
func (e *Engine) RevealRegion(ctx context.Context, regionID string) {
	sid := e.currentSession()
	if sid == "" {
		return
	}

	progress := domain.FullProgress
	revealed := domain.RevealRevealed
	e.rec.ApplyOptimistic(regionID, store.RegionPatch{
		DiscoveryProgress: &progress,
		RevealState:       &revealed,
	})

	if err := e.backend.PostReveal(ctx, sid, regionID); err != nil {
		log.Printf("Failed to reveal region %s: %v", regionID, err)
	}
	if err := e.refresh(ctx, sid); err != nil {
		log.Printf("Refresh after reveal failed: %v", err)
	}
}

// RevealAll is the administrative escape hatch: every region in the current
// snapshot is optimistically set to revealed at full progress, the
// authoritative call is posted, and a full refresh reconciles afterwards.
func (e *Engine) RevealAll(ctx context.Context) {
	sid := e.currentSession()
	if sid == "" {
		return
	}

	e.rec.ApplyOptimisticRevealAll()

	if err := e.backend.PostReveal(ctx, sid, RevealAllTarget); err != nil {
		log.Printf("Failed to reveal all regions: %v", err)
	}
	if err := e.refresh(ctx, sid); err != nil {
		log.Printf("Refresh after reveal-all failed: %v", err)
	}
}

// CheckDiscovery polls the authoritative progress on demand
func (e *Engine) CheckDiscovery(ctx context.Context) {
	sid := e.currentSession()
	if sid == "" {
		return
	}
	e.checkDiscovery(ctx, sid)
}

// Snapshot returns an immutable copy of the current graph, or nil while the
// graph is unavailable
func (e *Engine) Snapshot() *domain.Graph {
	return e.store.Snapshot()
}

// ProgressView returns the derived region-to-progress projection
func (e *Engine) ProgressView() map[string]float64 {
	return e.store.ProgressView()
}

// IsRegionAccessible reports whether a region is fully revealed
func (e *Engine) IsRegionAccessible(regionID string) bool {
	return e.store.IsRegionAccessible(regionID)
}

// NearDiscoveryRegions returns regions in the [90,100) progress band, most
// progressed first, excluding locally dismissed hints
func (e *Engine) NearDiscoveryRegions() []string {
	near := e.store.NearDiscoveryRegions()

	e.mu.Lock()
	defer e.mu.Unlock()

	filtered := near[:0]
	for _, id := range near {
		if _, dismissed := e.dismissed[id]; !dismissed {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

// DismissNearDiscovery hides a region from the near-discovery hint list for
// the rest of the session
func (e *Engine) DismissNearDiscovery(regionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dismissed[regionID] = struct{}{}
}

// GraphUnavailable reports whether the engine has never managed to fetch the
// initial authoritative graph. This is the only user-visible failure mode.
func (e *Engine) GraphUnavailable() bool {
	return !e.store.Ready()
}

func (e *Engine) currentSession() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// handlePush receives validated events from the push channel
func (e *Engine) handlePush(ev events.Event) {
	e.rec.ApplyEvent(ev)

	if _, ok := ev.(events.RegionDiscovered); ok {
		e.sched.MarkDiscovery(time.Now())
	}
}

// pollOnce is the scheduler's tick: a full refresh while the initial graph
// is still missing, a progress check otherwise.
func (e *Engine) pollOnce(ctx context.Context) error {
	sid := e.currentSession()
	if sid == "" {
		return nil
	}

	if !e.store.Ready() {
		return e.refresh(ctx, sid)
	}
	e.checkDiscovery(ctx, sid)
	return nil
}

// refresh fetches the authoritative graph and applies it. Results arriving
// after a session change are discarded, identified by comparing the session
// the fetch was issued for against the currently active one.
func (e *Engine) refresh(ctx context.Context, sid string) error {
	graph, err := e.backend.FetchGraph(ctx, sid)
	if err != nil {
		return domain.NewTransportError("fetch graph", err)
	}

	if e.currentSession() != sid {
		log.Printf("Discarding graph fetched for stale session %s", sid)
		return nil
	}
	return e.rec.ApplyRefresh(graph)
}

// refreshCurrent refreshes using the active session, if any. Used for
// asynchronous refreshes triggered by push events.
func (e *Engine) refreshCurrent() {
	e.mu.Lock()
	ctx := e.sessionCtx
	sid := e.sessionID
	e.mu.Unlock()

	if ctx == nil || sid == "" {
		return
	}
	if err := e.refresh(ctx, sid); err != nil {
		log.Printf("Event-triggered refresh failed: %v", err)
	}
}

// checkDiscovery polls progress and merges the report. Newly revealed
// regions reset the adaptive cadence.
func (e *Engine) checkDiscovery(ctx context.Context, sid string) {
	report, err := e.backend.FetchDiscoveryProgress(ctx, sid)
	if err != nil {
		log.Printf("Discovery progress check failed: %v", err)
		return
	}

	if e.currentSession() != sid {
		log.Printf("Discarding progress fetched for stale session %s", sid)
		return
	}

	if newly := e.rec.ApplyProgress(report); len(newly) > 0 {
		log.Printf("Poll revealed %d new regions: %v", len(newly), newly)
		e.sched.MarkDiscovery(time.Now())
	}
}
