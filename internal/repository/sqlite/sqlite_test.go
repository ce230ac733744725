package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/bekalpaslan/cosmograph/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedGraph() *domain.Graph {
	g := domain.NewGraph()
	alpha := domain.NewRegion("alpha", "Alpha", domain.LayerPlatform)
	alpha.Description = "The first region"
	beta := domain.NewRegion("beta", "Beta", domain.LayerPhysics)
	beta.DiscoveryProgress = 45
	beta.RevealState = domain.RevealFaint
	g.AddRegion(alpha)
	g.AddRegion(beta)
	g.AddBridge(domain.NewBridge("alpha", "beta"))
	return g
}

func TestImportAndGetGraph(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.ImportGraph(ctx, seedGraph()); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	got, err := repo.GetGraph(ctx)
	if err != nil {
		t.Fatalf("GetGraph failed: %v", err)
	}

	if len(got.Regions) != 2 {
		t.Errorf("expected 2 regions, got %d", len(got.Regions))
	}
	if len(got.Bridges) != 1 {
		t.Errorf("expected 1 bridge, got %d", len(got.Bridges))
	}

	beta := got.Regions["beta"]
	if beta == nil {
		t.Fatal("expected region beta")
	}
	if beta.DiscoveryProgress != 45 {
		t.Errorf("expected progress 45, got %f", beta.DiscoveryProgress)
	}
	if beta.RevealState != domain.RevealFaint {
		t.Errorf("expected faint state, got %s", beta.RevealState)
	}
	if beta.Evolution.BaseColor != domain.DefaultBaseColor {
		t.Errorf("expected default base color, got %s", beta.Evolution.BaseColor)
	}
}

func TestImportRejectsInvalidGraph(t *testing.T) {
	repo := newTestRepo(t)

	bad := domain.NewGraph()
	bad.AddRegion(domain.NewRegion("only", "Only", domain.LayerPlatform))
	bad.Bridges["dangling"] = &domain.Bridge{ID: "dangling", Source: "only", Target: "ghost"}

	if err := repo.ImportGraph(context.Background(), bad); err == nil {
		t.Fatal("expected import of invalid graph to fail")
	}

	got, err := repo.GetGraph(context.Background())
	if err != nil {
		t.Fatalf("GetGraph failed: %v", err)
	}
	if len(got.Regions) != 0 {
		t.Errorf("expected empty database after rejected import, got %d regions", len(got.Regions))
	}
}

func TestImportIsAdditive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.ImportGraph(ctx, seedGraph()); err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	// Progress accrued between seed imports must survive re-seeding
	alpha, err := repo.GetRegion(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetRegion failed: %v", err)
	}
	alpha.DiscoveryProgress = 60
	alpha.RevealState = domain.RevealFaint
	if err := repo.UpsertRegion(ctx, alpha); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	expanded := seedGraph()
	expanded.AddRegion(domain.NewRegion("gamma", "Gamma", domain.LayerExperience))
	if err := repo.ImportGraph(ctx, expanded); err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	got, err := repo.GetGraph(ctx)
	if err != nil {
		t.Fatalf("GetGraph failed: %v", err)
	}
	if len(got.Regions) != 3 {
		t.Errorf("expected 3 regions after expansion, got %d", len(got.Regions))
	}
}

func TestGetRegionMissing(t *testing.T) {
	repo := newTestRepo(t)

	region, err := repo.GetRegion(context.Background(), "nope")
	if err != nil {
		t.Fatalf("expected nil error for missing region, got %v", err)
	}
	if region != nil {
		t.Errorf("expected nil region, got %+v", region)
	}
}

func TestUpsertRegionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	region := domain.NewRegion("delta", "Delta", domain.LayerPhilosophy)
	region.DiscoveryProgress = 100
	region.RevealState = domain.RevealRevealed
	now := time.Now().UTC().Truncate(time.Second)
	region.DiscoveredAt = &now
	region.Health = &domain.Health{ContractCompliance: 0.9, ActivityLevel: 0.5, ErrorRate: 0.1}
	region.Metadata = map[string]any{"origin": "seed"}

	if err := repo.UpsertRegion(ctx, region); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := repo.GetRegion(ctx, "delta")
	if err != nil {
		t.Fatalf("GetRegion failed: %v", err)
	}
	if got.RevealState != domain.RevealRevealed {
		t.Errorf("expected revealed, got %s", got.RevealState)
	}
	if got.DiscoveredAt == nil || !got.DiscoveredAt.Equal(now) {
		t.Errorf("expected discovered_at %v, got %v", now, got.DiscoveredAt)
	}
	if got.Health == nil || got.Health.ContractCompliance != 0.9 {
		t.Errorf("health did not survive round trip: %+v", got.Health)
	}
}

func TestUpsertBridgeGeneratesID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.ImportGraph(ctx, seedGraph()); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	bridge := &domain.Bridge{Source: "beta", Target: "alpha", Strength: 0.3}
	if err := repo.UpsertBridge(ctx, bridge); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if bridge.ID == "" {
		t.Fatal("expected generated bridge id")
	}

	// Endpoint order does not matter for identity
	same := domain.NewBridge("alpha", "beta")
	if same.ID != bridge.ID {
		t.Errorf("expected same id for reversed endpoints, got %s and %s", bridge.ID, same.ID)
	}

	got, err := repo.GetBridge(ctx, bridge.ID)
	if err != nil {
		t.Fatalf("GetBridge failed: %v", err)
	}
	if got.Strength != 0.3 {
		t.Errorf("expected strength 0.3, got %f", got.Strength)
	}
}

func TestTriggerRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.ImportGraph(ctx, seedGraph()); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	trigger := &domain.DiscoveryTrigger{
		RegionID: "alpha",
		Condition: domain.TriggerCondition{
			Type:      domain.TriggerInteractionCount,
			Threshold: 10,
			Action:    "reveal",
		},
		Description: "Ten interactions reveal alpha",
	}
	if err := repo.SaveTrigger(ctx, trigger); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Saving again overwrites rather than duplicating
	trigger.Triggered = true
	if err := repo.SaveTrigger(ctx, trigger); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	triggers, err := repo.ListTriggers(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(triggers) != 1 {
		t.Fatalf("expected 1 trigger, got %d", len(triggers))
	}
	if !triggers[0].Triggered {
		t.Error("expected trigger to be marked fired")
	}
	if triggers[0].Condition.Threshold != 10 {
		t.Errorf("expected threshold 10, got %d", triggers[0].Condition.Threshold)
	}
}
