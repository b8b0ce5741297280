package catalog

import (
	"fmt"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// ValidationError rejects the whole catalogue
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a gap that does not block loading
type Warning struct {
	Code    string
	Message string
}

// Validate checks structural constraints
func Validate(c *Catalog) error {
	if c.Version == "" {
		return ValidationError{"version", "required"}
	}
	if len(c.Interventions) == 0 {
		return ValidationError{"interventions", "at least one intervention required"}
	}

	codes := make(map[string]bool, len(c.Interventions))
	for i, iv := range c.Interventions {
		field := fmt.Sprintf("interventions[%d]", i)
		if iv.Code == "" {
			return ValidationError{field + ".code", "required"}
		}
		if iv.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if codes[iv.Code] {
			return ValidationError{field + ".code", fmt.Sprintf("duplicate code %s", iv.Code)}
		}
		codes[iv.Code] = true
	}

	dims := make(map[int]bool)
	for i, m := range c.CapabilityMappings {
		field := fmt.Sprintf("capability_mappings[%d]", i)
		if m.DimensionID < 1 || m.DimensionID > contracts.DimensionCount {
			return ValidationError{field + ".dimension_id", fmt.Sprintf("must be in 1..%d", contracts.DimensionCount)}
		}
		if dims[m.DimensionID] {
			return ValidationError{field + ".dimension_id", fmt.Sprintf("duplicate dimension %d", m.DimensionID)}
		}
		dims[m.DimensionID] = true
		if err := checkRanked(field, m.Primary, m.Secondary, m.Tertiary, codes); err != nil {
			return err
		}
	}

	cells := make(map[[2]int]bool)
	for i, m := range c.CellMappings {
		field := fmt.Sprintf("cell_mappings[%d]", i)
		if err := checkCell(field, m.LevelID, m.CategoryID); err != nil {
			return err
		}
		key := [2]int{m.LevelID, m.CategoryID}
		if cells[key] {
			return ValidationError{field, fmt.Sprintf("duplicate cell %d/%d", m.LevelID, m.CategoryID)}
		}
		cells[key] = true
		if err := checkRanked(field, m.Primary, m.Secondary, m.Tertiary, codes); err != nil {
			return err
		}
	}

	seen := make(map[string]bool)
	for i, ns := range c.NextSteps {
		field := fmt.Sprintf("next_steps[%d]", i)
		if !codes[ns.InterventionCode] {
			return ValidationError{field + ".intervention_code", fmt.Sprintf("unknown intervention %q", ns.InterventionCode)}
		}
		if seen[ns.InterventionCode] {
			return ValidationError{field + ".intervention_code", fmt.Sprintf("duplicate %s", ns.InterventionCode)}
		}
		seen[ns.InterventionCode] = true
		if len(ns.NextCodes) > 3 {
			return ValidationError{field + ".next_intervention_codes", "at most three next steps"}
		}
		for _, code := range ns.NextCodes {
			if !codes[code] {
				return ValidationError{field + ".next_intervention_codes", fmt.Sprintf("unknown intervention %q", code)}
			}
		}
	}

	for i, t := range c.Taboos {
		field := fmt.Sprintf("taboos[%d]", i)
		if err := checkCell(field, t.LevelID, t.CategoryID); err != nil {
			return err
		}
		if t.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
	}

	return nil
}

func checkCell(field string, level, category int) error {
	if level < contracts.MinHeatmapIndex || level > contracts.MaxHeatmapIndex {
		return ValidationError{field + ".level_id", fmt.Sprintf("must be in %d..%d", contracts.MinHeatmapIndex, contracts.MaxHeatmapIndex)}
	}
	if category < contracts.MinHeatmapIndex || category > contracts.MaxHeatmapIndex {
		return ValidationError{field + ".category_id", fmt.Sprintf("must be in %d..%d", contracts.MinHeatmapIndex, contracts.MaxHeatmapIndex)}
	}
	return nil
}

// checkRanked requires a primary code and that every code exists
func checkRanked(field, primary, secondary, tertiary string, codes map[string]bool) error {
	if primary == "" {
		return ValidationError{field + ".primary_intervention_code", "required"}
	}
	for _, code := range []string{primary, secondary, tertiary} {
		if code != "" && !codes[code] {
			return ValidationError{field, fmt.Sprintf("unknown intervention %q", code)}
		}
	}
	return nil
}

// Check reports coverage gaps: unmapped dimensions and cells, unused interventions
func Check(c *Catalog) []Warning {
	var warnings []Warning

	mapped := make(map[int]bool)
	used := make(map[string]bool)
	for _, m := range c.CapabilityMappings {
		mapped[m.DimensionID] = true
		for _, pc := range m.Codes() {
			used[pc[1]] = true
		}
	}
	for d := 1; d <= contracts.DimensionCount; d++ {
		if !mapped[d] {
			warnings = append(warnings, Warning{"unmapped_dimension", fmt.Sprintf("dimension %d has no interventions", d)})
		}
	}

	cells := 0
	for _, m := range c.CellMappings {
		cells++
		for _, pc := range m.Codes() {
			used[pc[1]] = true
		}
	}
	if total := contracts.MaxHeatmapIndex * contracts.MaxHeatmapIndex; cells < total {
		warnings = append(warnings, Warning{"unmapped_cells", fmt.Sprintf("%d of %d heatmap cells have no interventions", total-cells, total)})
	}

	for _, ns := range c.NextSteps {
		for _, code := range ns.NextCodes {
			used[code] = true
		}
	}
	for _, iv := range c.Interventions {
		if !used[iv.Code] {
			warnings = append(warnings, Warning{"unused_intervention", fmt.Sprintf("%s is never recommended", iv.Code)})
		}
	}

	return warnings
}
