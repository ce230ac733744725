package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/events"
	"github.com/bekalpaslan/cosmograph/internal/repository"
)

// ActivityKind is the kind of session activity recorded against discovery
type ActivityKind string

const (
	ActivityInteraction    ActivityKind = "interaction"
	ActivityChainCompleted ActivityKind = "chain_completed"
	ActivityError          ActivityKind = "error"
)

// Activity is one recorded unit of session activity
type Activity struct {
	SessionID string
	Kind      ActivityKind
	Context   string
	ChainID   string
}

// ProgressReport is the authoritative per-region discovery progress
type ProgressReport struct {
	Progress     map[string]float64 `json:"progress"`
	ReadyRegions []string           `json:"ready_regions"`
}

// DiscoveryService owns reveal decisions. It evaluates discovery triggers
// against recorded activity and persists progress; clients only ever learn
// the resulting state.
type DiscoveryService struct {
	repo      repository.Repository
	eventBus  *EventBus
	evolution *EvolutionService

	mu sync.Mutex
	// interaction counts per region, lazily rehydrated from persisted
	// progress after a restart
	counts map[string]int
}

// NewDiscoveryService creates a new discovery service. The evolution service
// is optional; when present, recorded activity also drives visual evolution.
func NewDiscoveryService(repo repository.Repository, eventBus *EventBus, evolution *EvolutionService) *DiscoveryService {
	return &DiscoveryService{
		repo:      repo,
		eventBus:  eventBus,
		evolution: evolution,
		counts:    make(map[string]int),
	}
}

// RecordActivity evaluates every pending trigger against one activity
func (s *DiscoveryService) RecordActivity(ctx context.Context, activity Activity) error {
	if activity.SessionID == "" {
		return domain.NewValidationError("session id required")
	}

	triggers, err := s.repo.ListTriggers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list triggers: %w", err)
	}

	for _, trigger := range triggers {
		if trigger.Triggered {
			continue
		}

		switch trigger.Condition.Type {
		case domain.TriggerInteractionCount:
			if activity.Kind != ActivityInteraction {
				continue
			}
			if err := s.advanceInteractionTrigger(ctx, trigger, activity.SessionID); err != nil {
				log.Printf("Failed to advance trigger for region %s: %v", trigger.RegionID, err)
			}

		case domain.TriggerChainCompleted:
			if activity.Kind != ActivityChainCompleted {
				continue
			}
			if trigger.Condition.Action != "" && trigger.Condition.Action != activity.ChainID {
				continue
			}
			if err := s.fire(ctx, trigger, activity.SessionID); err != nil {
				log.Printf("Failed to fire chain trigger for region %s: %v", trigger.RegionID, err)
			}

		case domain.TriggerErrorEncountered:
			if activity.Kind != ActivityError {
				continue
			}
			if err := s.fire(ctx, trigger, activity.SessionID); err != nil {
				log.Printf("Failed to fire error trigger for region %s: %v", trigger.RegionID, err)
			}
		}
	}

	if s.evolution != nil {
		s.evolution.ProcessActivity(ctx, activity)
	}
	return nil
}

// advanceInteractionTrigger counts one interaction toward the trigger's
// threshold and persists the derived progress percentage.
func (s *DiscoveryService) advanceInteractionTrigger(ctx context.Context, trigger *domain.DiscoveryTrigger, sessionID string) error {
	region, err := s.repo.GetRegion(ctx, trigger.RegionID)
	if err != nil {
		return err
	}
	if region == nil {
		return domain.NewNotFoundError("region", trigger.RegionID)
	}

	threshold := trigger.Condition.Threshold
	if threshold <= 0 {
		threshold = 1
	}

	s.mu.Lock()
	count, ok := s.counts[trigger.RegionID]
	if !ok {
		// Rehydrate from persisted progress after a restart
		count = int(math.Round(region.DiscoveryProgress / 100 * float64(threshold)))
	}
	count++
	s.counts[trigger.RegionID] = count
	s.mu.Unlock()

	if count >= threshold {
		return s.fire(ctx, trigger, sessionID)
	}

	progress := domain.ClampProgress(float64(count) / float64(threshold) * 100)
	if progress > region.DiscoveryProgress {
		region.DiscoveryProgress = progress
		region.RevealState = domain.NextRevealState(region.RevealState, progress)
		if err := s.repo.UpsertRegion(ctx, region); err != nil {
			return err
		}
	}
	return nil
}

// fire marks the trigger satisfied and reveals its region
func (s *DiscoveryService) fire(ctx context.Context, trigger *domain.DiscoveryTrigger, sessionID string) error {
	now := time.Now()
	trigger.Triggered = true
	trigger.TriggeredAt = &now
	trigger.TriggeredBy = sessionID
	if err := s.repo.SaveTrigger(ctx, trigger); err != nil {
		return err
	}
	return s.reveal(ctx, trigger.RegionID, sessionID)
}

// Reveal force-reveals a single region (testing escape hatch)
func (s *DiscoveryService) Reveal(ctx context.Context, sessionID, regionID string) error {
	region, err := s.repo.GetRegion(ctx, regionID)
	if err != nil {
		return err
	}
	if region == nil {
		return domain.NewNotFoundError("region", regionID)
	}
	return s.reveal(ctx, regionID, sessionID)
}

// RevealAll force-reveals every region
func (s *DiscoveryService) RevealAll(ctx context.Context, sessionID string) error {
	graph, err := s.repo.GetGraph(ctx)
	if err != nil {
		return err
	}

	for id := range graph.Regions {
		if err := s.reveal(ctx, id, sessionID); err != nil {
			return err
		}
	}
	log.Printf("All %d regions revealed for session %s", len(graph.Regions), sessionID)
	return nil
}

func (s *DiscoveryService) reveal(ctx context.Context, regionID, sessionID string) error {
	region, err := s.repo.GetRegion(ctx, regionID)
	if err != nil {
		return err
	}
	if region == nil {
		return domain.NewNotFoundError("region", regionID)
	}

	if region.RevealState == domain.RevealRevealed {
		return nil
	}

	now := time.Now()
	region.DiscoveryProgress = domain.FullProgress
	region.RevealState = domain.RevealRevealed
	region.DiscoveredAt = &now
	region.Status = domain.RegionStatusIdle
	if err := s.repo.UpsertRegion(ctx, region); err != nil {
		return err
	}

	log.Printf("Region %s discovered by session %s", regionID, sessionID)
	s.eventBus.Publish(events.RegionDiscovered{RegionID: regionID, SessionID: sessionID})
	return nil
}

// Progress reports the persisted discovery state for every region
func (s *DiscoveryService) Progress(ctx context.Context, sessionID string) (*ProgressReport, error) {
	graph, err := s.repo.GetGraph(ctx)
	if err != nil {
		return nil, err
	}

	report := &ProgressReport{Progress: make(map[string]float64, len(graph.Regions))}
	for id, region := range graph.Regions {
		report.Progress[id] = region.DiscoveryProgress
		if region.RevealState == domain.RevealRevealed {
			report.ReadyRegions = append(report.ReadyRegions, id)
		}
	}
	return report, nil
}
