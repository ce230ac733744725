package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/events"
	"github.com/bekalpaslan/cosmograph/internal/repository"
)

// Per-activity evolution steps. Small on purpose: visual change should be
// noticeable over a session, not per click.
const (
	hueRotationPerInteraction     = 0.5
	temperatureStepPerInteraction = 0.01
	saturationStepPerInteraction  = 0.005
	strengthStepPerTraversal      = 0.05

	// DefaultTickThrottle bounds how often a single region evolves
	DefaultTickThrottle = time.Second
)

// EvolutionService mutates the visual evolution state of regions and
// bridges in response to recorded activity and publishes the resulting
// deltas as evolution ticks.
type EvolutionService struct {
	repo     repository.Repository
	eventBus *EventBus
	throttle time.Duration

	mu       sync.Mutex
	lastTick map[string]time.Time
}

// NewEvolutionService creates a new evolution service
func NewEvolutionService(repo repository.Repository, eventBus *EventBus) *EvolutionService {
	return &EvolutionService{
		repo:     repo,
		eventBus: eventBus,
		throttle: DefaultTickThrottle,
		lastTick: make(map[string]time.Time),
	}
}

// WithThrottle overrides the per-region tick throttle, used by tests
func (s *EvolutionService) WithThrottle(d time.Duration) *EvolutionService {
	s.throttle = d
	return s
}

// ProcessActivity translates one activity into evolution deltas. Activity
// context naming an unknown region is skipped quietly; not every
// interaction happens inside a region.
func (s *EvolutionService) ProcessActivity(ctx context.Context, activity Activity) {
	switch activity.Kind {
	case ActivityInteraction:
		s.processInteraction(ctx, activity.Context, activity.SessionID)
	case ActivityChainCompleted:
		s.processChainCompleted(ctx, activity)
	}
}

// processInteraction warms and rotates the region the interaction happened in
func (s *EvolutionService) processInteraction(ctx context.Context, regionID, sessionID string) {
	if regionID == "" || !s.allow(regionID) {
		return
	}

	region, err := s.repo.GetRegion(ctx, regionID)
	if err != nil {
		log.Printf("Failed to load region %s for evolution: %v", regionID, err)
		return
	}
	if region == nil {
		return
	}

	delta := domain.RegionDelta{
		HueRotationDegrees: hueRotationPerInteraction,
		SaturationDelta:    saturationStepPerInteraction,
		TemperatureDelta:   temperatureStepPerInteraction,
	}
	domain.ApplyRegionDelta(region, delta)
	now := time.Now()
	region.LastActiveAt = &now
	region.Status = domain.RegionStatusActive

	if err := s.repo.UpsertRegion(ctx, region); err != nil {
		log.Printf("Failed to persist evolution for region %s: %v", regionID, err)
		return
	}

	s.eventBus.Publish(events.EvolutionTick{
		TickID:    uuid.NewString(),
		SessionID: sessionID,
		RegionUpdates: []events.RegionUpdate{
			{RegionID: regionID, Delta: delta},
		},
	})
}

// processChainCompleted strengthens every bridge incident to the region the
// chain ran in, recording a trace on each.
func (s *EvolutionService) processChainCompleted(ctx context.Context, activity Activity) {
	if activity.Context == "" {
		return
	}

	graph, err := s.repo.GetGraph(ctx)
	if err != nil {
		log.Printf("Failed to load graph for traversal: %v", err)
		return
	}
	if _, ok := graph.Regions[activity.Context]; !ok {
		return
	}

	now := time.Now()
	var updates []events.BridgeUpdate
	for _, bridge := range graph.Bridges {
		if bridge.Source != activity.Context && bridge.Target != activity.Context {
			continue
		}

		delta := domain.BridgeDelta{
			StrengthIncrement: strengthStepPerTraversal,
			Trace: &domain.TraceRecord{
				Timestamp: now,
				SessionID: activity.SessionID,
				ChainID:   activity.ChainID,
				Result:    domain.TraceSuccess,
			},
		}
		domain.ApplyBridgeDelta(bridge, delta)

		if err := s.repo.UpsertBridge(ctx, bridge); err != nil {
			log.Printf("Failed to persist traversal on bridge %s: %v", bridge.ID, err)
			continue
		}
		updates = append(updates, events.BridgeUpdate{BridgeID: bridge.ID, Delta: delta})
	}

	if len(updates) == 0 {
		return
	}
	s.eventBus.Publish(events.EvolutionTick{
		TickID:        uuid.NewString(),
		SessionID:     activity.SessionID,
		BridgeUpdates: updates,
	})
}

// allow rate-limits evolution per region
func (s *EvolutionService) allow(regionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if last, ok := s.lastTick[regionID]; ok && now.Sub(last) < s.throttle {
		return false
	}
	s.lastTick[regionID] = now
	return true
}
