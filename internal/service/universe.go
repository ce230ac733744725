package service

import (
	"context"
	"fmt"
	"log"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/events"
	"github.com/bekalpaslan/cosmograph/internal/repository"
)

// UniverseService provides access to the ground-truth universe graph
type UniverseService struct {
	repo     repository.Repository
	eventBus *EventBus
}

// NewUniverseService creates a new universe service
func NewUniverseService(repo repository.Repository, eventBus *EventBus) *UniverseService {
	return &UniverseService{
		repo:     repo,
		eventBus: eventBus,
	}
}

// GetGraph returns the complete universe graph
func (s *UniverseService) GetGraph(ctx context.Context) (*domain.Graph, error) {
	return s.repo.GetGraph(ctx)
}

// GetRegion retrieves a single region by ID
func (s *UniverseService) GetRegion(ctx context.Context, id string) (*domain.Region, error) {
	region, err := s.repo.GetRegion(ctx, id)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, domain.NewNotFoundError("region", id)
	}
	return region, nil
}

// Seed imports a seed graph and its triggers. Existing discovery state is
// preserved: already revealed regions keep their progress, only new topology
// and new triggers are added.
func (s *UniverseService) Seed(ctx context.Context, graph *domain.Graph, triggers []*domain.DiscoveryTrigger) error {
	existing, err := s.repo.GetGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to load existing graph: %w", err)
	}

	var newRegions []string
	for id, region := range graph.Regions {
		if prev, ok := existing.Regions[id]; ok {
			// Seed updates presentation fields only; accrued activity state
			// survives a re-seed.
			region.RevealState = prev.RevealState
			region.DiscoveryProgress = prev.DiscoveryProgress
			region.Status = prev.Status
			region.DiscoveredAt = prev.DiscoveredAt
			region.Evolution = prev.Evolution
			region.LastActiveAt = prev.LastActiveAt
			region.Health = prev.Health
			region.SessionCount = prev.SessionCount
			continue
		}
		newRegions = append(newRegions, id)
	}

	if err := s.repo.ImportGraph(ctx, graph); err != nil {
		return err
	}

	// Fired triggers keep their state across re-seeds
	current, err := s.repo.ListTriggers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list triggers: %w", err)
	}
	known := make(map[string]struct{}, len(current))
	for _, t := range current {
		known[t.RegionID+"/"+string(t.Condition.Type)] = struct{}{}
	}

	for _, trigger := range triggers {
		if _, ok := known[trigger.RegionID+"/"+string(trigger.Condition.Type)]; ok {
			continue
		}
		if err := s.repo.SaveTrigger(ctx, trigger); err != nil {
			return err
		}
	}

	// Topology growth is announced as such; clients respond with a full
	// refresh rather than an incremental insert.
	if len(existing.Regions) > 0 && len(newRegions) > 0 {
		log.Printf("Universe expanded with %d new regions", len(newRegions))
		for _, id := range newRegions {
			s.eventBus.Publish(events.MapExpanded{NewRegionID: id})
		}
	}

	return nil
}
