package contracts

import "time"

// Company is a tenant of the dashboard
type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Intervention is a remediation program from the intervention catalogue
type Intervention struct {
	Code         string `json:"code" yaml:"code"`
	Name         string `json:"name" yaml:"name"`
	Level        string `json:"level" yaml:"level"`
	CoreFunction string `json:"core_function" yaml:"core_function"`
	Description  string `json:"description" yaml:"description"`
}

// RankedIntervention is an intervention with its position in a recommendation
type RankedIntervention struct {
	Intervention
	Priority string `json:"priority"` // primary, secondary, tertiary
}

// Recommendation priorities, in order
const (
	PriorityPrimary   = "primary"
	PrioritySecondary = "secondary"
	PriorityTertiary  = "tertiary"
)

// CapabilityMapping links a capability dimension to three interventions
type CapabilityMapping struct {
	DimensionID   int    `json:"dimension_id" yaml:"dimension_id"`
	DimensionName string `json:"dimension_name" yaml:"dimension_name"`
	Rationale     string `json:"rationale" yaml:"rationale"`
	Primary       string `json:"primary_intervention_code" yaml:"primary_intervention_code"`
	Secondary     string `json:"secondary_intervention_code" yaml:"secondary_intervention_code"`
	Tertiary      string `json:"tertiary_intervention_code" yaml:"tertiary_intervention_code"`
}

// Codes returns the mapped intervention codes with their priorities, in order
func (m CapabilityMapping) Codes() [][2]string {
	return orderedCodes(m.Primary, m.Secondary, m.Tertiary)
}

// CellMapping links a sentiment heatmap cell to three interventions
type CellMapping struct {
	LevelID    int    `json:"level_id" yaml:"level_id"`
	CategoryID int    `json:"category_id" yaml:"category_id"`
	LevelName  string `json:"level_name" yaml:"level_name"`
	Category   string `json:"category" yaml:"category"`
	Reason     string `json:"reason" yaml:"reason"`
	Primary    string `json:"primary_intervention_code" yaml:"primary_intervention_code"`
	Secondary  string `json:"secondary_intervention_code" yaml:"secondary_intervention_code"`
	Tertiary   string `json:"tertiary_intervention_code" yaml:"tertiary_intervention_code"`
}

// Codes returns the mapped intervention codes with their priorities, in order
func (m CellMapping) Codes() [][2]string {
	return orderedCodes(m.Primary, m.Secondary, m.Tertiary)
}

func orderedCodes(primary, secondary, tertiary string) [][2]string {
	out := make([][2]string, 0, 3)
	for _, pc := range [][2]string{
		{PriorityPrimary, primary},
		{PrioritySecondary, secondary},
		{PriorityTertiary, tertiary},
	} {
		if pc[1] != "" {
			out = append(out, pc)
		}
	}
	return out
}

// NextSteps lists follow-up interventions after one is completed
type NextSteps struct {
	InterventionCode string   `json:"intervention_code" yaml:"intervention_code"`
	Rationale        string   `json:"rationale" yaml:"rationale"`
	NextCodes        []string `json:"next_intervention_codes" yaml:"next_intervention_codes"`
}

// Taboo is a cultural blocker attached to a sentiment heatmap cell
type Taboo struct {
	ID                   int    `json:"id" yaml:"-"`
	LevelID              int    `json:"level_id" yaml:"level_id"`
	CategoryID           int    `json:"category_id" yaml:"category_id"`
	LevelName            string `json:"level_name" yaml:"level_name"`
	RootCause            string `json:"root_cause" yaml:"root_cause"`
	Name                 string `json:"name" yaml:"name"`
	ShortDescription     string `json:"short_description" yaml:"short_description"`
	Description          string `json:"description" yaml:"description"`
	HowItShowsUp         string `json:"how_it_shows_up" yaml:"how_it_shows_up"`
	PossibleActions      string `json:"possible_actions" yaml:"possible_actions"`
	RootCauseExplanation string `json:"root_cause_explanation" yaml:"root_cause_explanation"`
}

// Heatmap cell bounds
const (
	MinHeatmapIndex = 1
	MaxHeatmapIndex = 5
)

// AssessmentPeriod names one survey wave of a company
type AssessmentPeriod struct {
	ID                   int64     `json:"id"`
	CompanyID            string    `json:"company_id"`
	SurveyWave           string    `json:"survey_wave"`
	AssessmentDate       time.Time `json:"assessment_date"`
	Name                 string    `json:"name"`
	Description          string    `json:"description,omitempty"`
	InterventionsApplied []string  `json:"interventions_applied"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}

// PeriodStatusActive is the status of a newly created period
const PeriodStatusActive = "active"
