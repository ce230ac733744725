package domain

import "time"

const (
	// DefaultBaseColor is used when a seed entry carries no base color
	DefaultBaseColor = "#4a90e2"

	// HeatStepPerTraversal is the fixed heat increment applied per bridge
	// traversal, saturating at 1.0
	HeatStepPerTraversal = 0.05
)

// Evolution holds the presentational state of a region. All ratio fields are
// bounded to [0,1]; bounds are enforced by ApplyRegionDelta.
type Evolution struct {
	BaseColor     string  `json:"base_color"`
	CurrentColor  string  `json:"current_color"`
	Saturation    float64 `json:"saturation"`
	Temperature   float64 `json:"temperature"`
	GlowIntensity float64 `json:"glow_intensity"`
}

// NewEvolution returns evolution state anchored at the given base color
func NewEvolution(baseColor string) Evolution {
	return Evolution{
		BaseColor:    baseColor,
		CurrentColor: baseColor,
	}
}

// RegionDelta is a bounded evolution delta for a region
type RegionDelta struct {
	HueRotationDegrees float64 `json:"hue_rotation_degrees"`
	SaturationDelta    float64 `json:"saturation_delta"`
	TemperatureDelta   float64 `json:"temperature_delta"`
}

// IsZero reports whether the delta carries no change. Callers skip zero
// deltas rather than applying them.
func (d RegionDelta) IsZero() bool {
	return d.HueRotationDegrees == 0 && d.SaturationDelta == 0 && d.TemperatureDelta == 0
}

// BridgeDelta is a bounded evolution delta for a bridge. Trace, when set,
// records the traversal that produced the delta.
type BridgeDelta struct {
	StrengthIncrement float64      `json:"strength_increment"`
	Trace             *TraceRecord `json:"trace,omitempty"`
}

// IsZero reports whether the delta carries no change
func (d BridgeDelta) IsZero() bool {
	return d.StrengthIncrement == 0 && d.Trace == nil
}

// ApplyRegionDelta merges an evolution delta into a region's visual fields.
// Saturation and temperature are clamped to [0,1]; glow intensity is
// recomputed from the new temperature so re-application with the same
// temperature is stable; the current color is rotated deterministically in
// HSL space.
func ApplyRegionDelta(r *Region, d RegionDelta) {
	if d.IsZero() {
		return
	}

	ev := &r.Evolution
	ev.Saturation = clamp01(ev.Saturation + d.SaturationDelta)
	ev.Temperature = clamp01(ev.Temperature + d.TemperatureDelta)
	ev.GlowIntensity = glowForTemperature(ev.Temperature)
	ev.CurrentColor = ApplyColorShift(ev.CurrentColor, d)
}

// ApplyBridgeDelta merges an evolution delta into a bridge: strength and heat
// are clamped, the trace record (if any) is prepended to the bounded history,
// and the traversal count advances.
func ApplyBridgeDelta(b *Bridge, d BridgeDelta) {
	if d.IsZero() {
		return
	}

	b.Strength = clamp01(b.Strength + d.StrengthIncrement)
	b.HeatLevel = clamp01(b.HeatLevel + HeatStepPerTraversal)
	b.TraversalCount++

	if d.Trace != nil {
		b.TraceHistory = append([]TraceRecord{*d.Trace}, b.TraceHistory...)
		if len(b.TraceHistory) > TraceHistoryCap {
			b.TraceHistory = b.TraceHistory[:TraceHistoryCap]
		}
		t := d.Trace.Timestamp
		b.LastTraversed = &t
	} else {
		now := time.Now()
		b.LastTraversed = &now
	}
}

// glowForTemperature derives glow intensity from temperature. Glow is a pure
// function of the current temperature, not of the delta that produced it.
func glowForTemperature(temperature float64) float64 {
	return clamp01(temperature)
}

// clamp01 pins a value to [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampProgress pins a discovery progress value to [0,100]
func ClampProgress(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > FullProgress {
		return FullProgress
	}
	return v
}
