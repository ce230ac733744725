package domain

import "time"

// TriggerType identifies the kind of unlock condition for a region
type TriggerType string

const (
	TriggerInteractionCount TriggerType = "interaction_count"
	TriggerChainCompleted   TriggerType = "chain_completed"
	TriggerErrorEncountered TriggerType = "error_encountered"
)

// TriggerCondition is the condition a discovery trigger evaluates
type TriggerCondition struct {
	Type TriggerType `json:"type" yaml:"type"`

	// Threshold applies to interaction_count triggers
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// Action applies to chain_completed triggers
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
}

// DiscoveryTrigger is an organic unlock condition for a region, evaluated by
// the authoritative side on every recorded activity.
type DiscoveryTrigger struct {
	RegionID    string           `json:"region_id"`
	Condition   TriggerCondition `json:"condition"`
	Description string           `json:"description,omitempty"`
	Triggered   bool             `json:"triggered"`
	TriggeredAt *time.Time       `json:"triggered_at,omitempty"`
	TriggeredBy string           `json:"triggered_by,omitempty"`
}
