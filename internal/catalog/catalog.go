// Package catalog loads the intervention catalogue and its mappings from YAML.
package catalog

import (
	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// Catalog is the reference data behind recommendations and taboos
// ⭐ SSOT: shape of the catalogue seed file
type Catalog struct {
	Version            string                        `yaml:"version" json:"version"`
	Interventions      []contracts.Intervention      `yaml:"interventions" json:"interventions"`
	CapabilityMappings []contracts.CapabilityMapping `yaml:"capability_mappings" json:"capability_mappings"`
	CellMappings       []contracts.CellMapping       `yaml:"cell_mappings" json:"cell_mappings"`
	NextSteps          []contracts.NextSteps         `yaml:"next_steps" json:"next_steps"`
	Taboos             []contracts.Taboo             `yaml:"taboos" json:"taboos"`
}

// Codes returns the set of intervention codes
func (c *Catalog) Codes() map[string]bool {
	codes := make(map[string]bool, len(c.Interventions))
	for _, iv := range c.Interventions {
		codes[iv.Code] = true
	}
	return codes
}

// Summary counts each section
func (c *Catalog) Summary() map[string]int {
	return map[string]int{
		"interventions":       len(c.Interventions),
		"capability_mappings": len(c.CapabilityMappings),
		"cell_mappings":       len(c.CellMappings),
		"next_steps":          len(c.NextSteps),
		"taboos":              len(c.Taboos),
	}
}
