// Package loader reads seed universe definitions from YAML.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bekalpaslan/cosmograph/internal/domain"
)

// SeedYAML represents the seed file structure
type SeedYAML struct {
	Version string                 `yaml:"version"`
	Regions map[string]*RegionYAML `yaml:"regions"`
	Bridges []BridgeYAML           `yaml:"bridges,omitempty"`
}

// RegionYAML represents a region in YAML format
type RegionYAML struct {
	Label       string        `yaml:"label"`
	Layer       string        `yaml:"layer"`
	Description string        `yaml:"description,omitempty"`
	BaseColor   string        `yaml:"base_color,omitempty"`
	Triggers    []TriggerYAML `yaml:"triggers,omitempty"`
}

// TriggerYAML represents an unlock condition for a region
type TriggerYAML struct {
	Type        string `yaml:"type"`
	Threshold   int    `yaml:"threshold,omitempty"`
	Action      string `yaml:"action,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// BridgeYAML represents a bridge between two regions
type BridgeYAML struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

var validLayers = map[string]domain.RegionLayer{
	"platform":   domain.LayerPlatform,
	"template":   domain.LayerTemplate,
	"philosophy": domain.LayerPhilosophy,
	"physics":    domain.LayerPhysics,
	"experience": domain.LayerExperience,
}

var validTriggerTypes = map[string]domain.TriggerType{
	"interaction_count": domain.TriggerInteractionCount,
	"chain_completed":   domain.TriggerChainCompleted,
	"error_encountered": domain.TriggerErrorEncountered,
}

// LoadYAML loads a seed universe from a YAML file
func LoadYAML(path string) (*domain.Graph, []*domain.DiscoveryTrigger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseYAML(data)
}

// ParseYAML parses a seed universe from YAML bytes
func ParseYAML(data []byte) (*domain.Graph, []*domain.DiscoveryTrigger, error) {
	var seed SeedYAML
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return convertSeed(&seed)
}

func convertSeed(seed *SeedYAML) (*domain.Graph, []*domain.DiscoveryTrigger, error) {
	if len(seed.Regions) == 0 {
		return nil, nil, fmt.Errorf("seed defines no regions")
	}

	graph := domain.NewGraph()
	var triggers []*domain.DiscoveryTrigger

	for id, ry := range seed.Regions {
		if ry == nil {
			return nil, nil, fmt.Errorf("region %s has no body", id)
		}
		if ry.Label == "" {
			return nil, nil, fmt.Errorf("region %s missing label", id)
		}

		layer, ok := validLayers[ry.Layer]
		if !ok {
			return nil, nil, fmt.Errorf("region %s has unknown layer %q", id, ry.Layer)
		}

		region := domain.NewRegion(id, ry.Label, layer)
		region.Description = ry.Description
		if ry.BaseColor != "" {
			region.Evolution = domain.NewEvolution(ry.BaseColor)
		}
		graph.AddRegion(region)

		for _, ty := range ry.Triggers {
			triggerType, ok := validTriggerTypes[ty.Type]
			if !ok {
				return nil, nil, fmt.Errorf("region %s has unknown trigger type %q", id, ty.Type)
			}
			if triggerType == domain.TriggerInteractionCount && ty.Threshold <= 0 {
				return nil, nil, fmt.Errorf("region %s interaction trigger needs a positive threshold", id)
			}

			triggers = append(triggers, &domain.DiscoveryTrigger{
				RegionID: id,
				Condition: domain.TriggerCondition{
					Type:      triggerType,
					Threshold: ty.Threshold,
					Action:    ty.Action,
				},
				Description: ty.Description,
			})
		}
	}

	for _, by := range seed.Bridges {
		if by.Source == "" || by.Target == "" {
			return nil, nil, fmt.Errorf("bridge missing source or target")
		}
		graph.AddBridge(domain.NewBridge(by.Source, by.Target))
	}

	if err := graph.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid seed universe: %w", err)
	}

	return graph, triggers, nil
}
