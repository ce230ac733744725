package domain

import "time"

// Health score weights. Fixed by contract: compliance carries the most
// weight, activity and error rate split the remainder.
const (
	healthWeightCompliance = 0.4
	healthWeightActivity   = 0.3
	healthWeightErrors     = 0.3
)

// Health holds three independent ratios in [0,1] for a region
type Health struct {
	ContractCompliance float64    `json:"contract_compliance"`
	ActivityLevel      float64    `json:"activity_level"`
	ErrorRate          float64    `json:"error_rate"`
	LastHealthCheck    *time.Time `json:"last_health_check,omitempty"`
}

// Score combines the three ratios into a single health score in [0,1].
// A high error rate lowers the score.
func (h *Health) Score() float64 {
	if h == nil {
		return 0
	}
	score := healthWeightCompliance*clamp01(h.ContractCompliance) +
		healthWeightActivity*clamp01(h.ActivityLevel) +
		healthWeightErrors*(1-clamp01(h.ErrorRate))
	return clamp01(score)
}
