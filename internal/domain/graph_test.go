package domain

import (
	"errors"
	"testing"
)

func buildGraph(regionIDs []string, bridges [][2]string) *Graph {
	g := NewGraph()
	for _, id := range regionIDs {
		g.AddRegion(NewRegion(id, id, LayerPlatform))
	}
	for _, pair := range bridges {
		g.AddBridge(NewBridge(pair[0], pair[1]))
	}
	return g
}

func TestGraphValidate(t *testing.T) {
	t.Run("accepts well-formed graph", func(t *testing.T) {
		g := buildGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
		if err := g.Validate(); err != nil {
			t.Errorf("expected valid graph, got %v", err)
		}
	})

	t.Run("rejects bridge with unknown endpoint", func(t *testing.T) {
		g := buildGraph([]string{"a"}, [][2]string{{"a", "ghost"}})

		err := g.Validate()
		if err == nil {
			t.Fatal("expected validation error")
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %T", err)
		}
	})

	t.Run("rejects self-loop", func(t *testing.T) {
		g := buildGraph([]string{"a"}, nil)
		g.AddBridge(&Bridge{ID: "loop", Source: "a", Target: "a"})

		if err := g.Validate(); err == nil {
			t.Error("expected validation error for self-loop")
		}
	})
}

func TestGraphClone(t *testing.T) {
	g := buildGraph([]string{"a", "b"}, [][2]string{{"a", "b"}})
	g.Regions["a"].DiscoveryProgress = 42

	clone := g.Clone()

	t.Run("copies values", func(t *testing.T) {
		if clone.Regions["a"].DiscoveryProgress != 42 {
			t.Errorf("expected progress carried over, got %f", clone.Regions["a"].DiscoveryProgress)
		}
	})

	t.Run("mutating clone does not touch original", func(t *testing.T) {
		clone.Regions["a"].DiscoveryProgress = 99
		clone.Regions["a"].RevealState = RevealRevealed

		if g.Regions["a"].DiscoveryProgress != 42 {
			t.Errorf("original progress changed to %f", g.Regions["a"].DiscoveryProgress)
		}
		if g.Regions["a"].RevealState == RevealRevealed {
			t.Error("original reveal state changed")
		}
	})
}

func TestGraphProgressView(t *testing.T) {
	g := buildGraph([]string{"a", "b"}, nil)
	g.Regions["a"].DiscoveryProgress = 10
	g.Regions["b"].DiscoveryProgress = 90

	view := g.ProgressView()
	if view["a"] != 10 || view["b"] != 90 {
		t.Errorf("unexpected view: %v", view)
	}

	// The view is a projection, not shared state
	view["a"] = 100
	if g.Regions["a"].DiscoveryProgress != 10 {
		t.Error("mutating view changed the graph")
	}
}

func TestGraphNearDiscoveryRegions(t *testing.T) {
	g := buildGraph([]string{"low", "mid", "high", "done"}, nil)
	g.Regions["low"].DiscoveryProgress = 50
	g.Regions["mid"].DiscoveryProgress = 91
	g.Regions["high"].DiscoveryProgress = 97
	g.Regions["done"].DiscoveryProgress = 100

	got := g.NearDiscoveryRegions()
	if len(got) != 2 {
		t.Fatalf("expected 2 regions, got %v", got)
	}
	if got[0] != "high" || got[1] != "mid" {
		t.Errorf("expected descending progress order [high mid], got %v", got)
	}
}

func TestBridgeGenerateID(t *testing.T) {
	t.Run("deterministic regardless of endpoint order", func(t *testing.T) {
		b1 := NewBridge("a", "b")
		b2 := NewBridge("b", "a")
		if b1.ID != b2.ID {
			t.Errorf("expected same id, got %s and %s", b1.ID, b2.ID)
		}
	})

	t.Run("distinct endpoints get distinct ids", func(t *testing.T) {
		b1 := NewBridge("a", "b")
		b2 := NewBridge("a", "c")
		if b1.ID == b2.ID {
			t.Errorf("expected distinct ids, both %s", b1.ID)
		}
	})
}
