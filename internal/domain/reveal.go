package domain

// RevealState represents the fog-of-war visibility of a region
type RevealState string

const (
	// RevealHidden means completely undiscovered, invisible on the map
	RevealHidden RevealState = "hidden"
	// RevealFaint means the outline is visible but the region is not yet accessible
	RevealFaint RevealState = "faint"
	// RevealRevealed means fully discovered and accessible
	RevealRevealed RevealState = "revealed"
)

const (
	// FullProgress is the discovery progress at which a region is revealed
	FullProgress = 100.0
	// NearDiscoveryThreshold marks the "about to unlock" band [90,100)
	NearDiscoveryThreshold = 90.0
)

// revealRank orders states so forward-only transitions can be checked
func revealRank(s RevealState) int {
	switch s {
	case RevealFaint:
		return 1
	case RevealRevealed:
		return 2
	default:
		return 0
	}
}

// NextRevealState derives the fog-of-war state from discovery progress.
// Transitions only move forward: a revealed region never regresses through
// this path, and re-applying the same progress yields the same state.
func NextRevealState(current RevealState, progress float64) RevealState {
	if progress >= FullProgress {
		return RevealRevealed
	}
	if current == RevealRevealed {
		return RevealRevealed
	}
	if progress > 0 {
		return RevealFaint
	}
	return current
}

// ForwardRevealState returns the later of two reveal states. Used when
// merging concurrent updates so the visible state never moves backwards.
func ForwardRevealState(current, proposed RevealState) RevealState {
	if revealRank(proposed) > revealRank(current) {
		return proposed
	}
	return current
}
