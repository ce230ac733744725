package repository

import (
	"context"

	"github.com/bekalpaslan/cosmograph/internal/domain"
)

// Repository defines the interface for universe data access
type Repository interface {
	// Read operations
	GetGraph(ctx context.Context) (*domain.Graph, error)
	GetRegion(ctx context.Context, id string) (*domain.Region, error)
	GetBridge(ctx context.Context, id string) (*domain.Bridge, error)

	// Write operations
	UpsertRegion(ctx context.Context, region *domain.Region) error
	UpsertBridge(ctx context.Context, bridge *domain.Bridge) error

	// Trigger operations
	ListTriggers(ctx context.Context) ([]*domain.DiscoveryTrigger, error)
	SaveTrigger(ctx context.Context, trigger *domain.DiscoveryTrigger) error

	// Bulk operations
	ImportGraph(ctx context.Context, graph *domain.Graph) error

	// Close releases resources
	Close() error
}
