package interventions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/ainavigator/backend/internal/capability"
	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// ErrOutOfRange is returned for a dimension or heatmap index outside its bounds
var ErrOutOfRange = errors.New("value out of range")

// Recommendation is an ordered set of interventions with the reason they were chosen
type Recommendation struct {
	DimensionID   int                            `json:"dimension_id,omitempty"`
	DimensionName string                         `json:"dimension_name,omitempty"`
	LevelID       int                            `json:"level_id,omitempty"`
	CategoryID    int                            `json:"category_id,omitempty"`
	LevelName     string                         `json:"level_name,omitempty"`
	Category      string                         `json:"category,omitempty"`
	Rationale     string                         `json:"rationale"`
	Interventions []contracts.RankedIntervention `json:"interventions"`
}

// Detail is one intervention with its follow-up interventions
type Detail struct {
	contracts.Intervention
	NextSteps *ResolvedNextSteps `json:"next_steps,omitempty"`
}

// ResolvedNextSteps carries next-step interventions in order
type ResolvedNextSteps struct {
	Rationale     string                   `json:"rationale"`
	Interventions []contracts.Intervention `json:"interventions"`
}

// Service answers intervention and taboo lookups
type Service struct {
	interventions contracts.InterventionRepository
	taboos        contracts.TabooRepository
}

// NewService creates a new Service
func NewService(interventions contracts.InterventionRepository, taboos contracts.TabooRepository) *Service {
	return &Service{interventions: interventions, taboos: taboos}
}

// List returns the whole catalogue
func (s *Service) List(ctx context.Context) ([]contracts.Intervention, error) {
	return s.interventions.List(ctx)
}

// ForDimension returns the three interventions recommended for a capability dimension
func (s *Service) ForDimension(ctx context.Context, dimensionID int) (*Recommendation, error) {
	if _, ok := capability.DimensionByID(dimensionID); !ok {
		return nil, fmt.Errorf("%w: dimension %d (valid 1..%d)", ErrOutOfRange, dimensionID, contracts.DimensionCount)
	}

	m, err := s.interventions.CapabilityMapping(ctx, dimensionID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.resolve(ctx, m.Codes())
	if err != nil {
		return nil, err
	}

	return &Recommendation{
		DimensionID:   m.DimensionID,
		DimensionName: m.DimensionName,
		Rationale:     m.Rationale,
		Interventions: ranked,
	}, nil
}

// ForCell returns the three interventions recommended for a sentiment heatmap cell
func (s *Service) ForCell(ctx context.Context, levelID, categoryID int) (*Recommendation, error) {
	if err := checkCell(levelID, categoryID); err != nil {
		return nil, err
	}

	m, err := s.interventions.CellMapping(ctx, levelID, categoryID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.resolve(ctx, m.Codes())
	if err != nil {
		return nil, err
	}

	return &Recommendation{
		LevelID:       m.LevelID,
		CategoryID:    m.CategoryID,
		LevelName:     m.LevelName,
		Category:      m.Category,
		Rationale:     m.Reason,
		Interventions: ranked,
	}, nil
}

// Detail returns one intervention (code is case-insensitive) with its next steps
func (s *Service) Detail(ctx context.Context, code string) (*Detail, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("intervention code: %w", contracts.ErrNotFound)
	}

	iv, err := s.interventions.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	detail := &Detail{Intervention: *iv}

	ns, err := s.interventions.NextSteps(ctx, code)
	if errors.Is(err, contracts.ErrNotFound) {
		return detail, nil
	}
	if err != nil {
		return nil, err
	}

	found, err := s.interventions.GetByCodes(ctx, ns.NextCodes)
	if err != nil {
		return nil, err
	}
	resolved := &ResolvedNextSteps{Rationale: ns.Rationale, Interventions: make([]contracts.Intervention, 0, len(ns.NextCodes))}
	for _, c := range ns.NextCodes {
		if next, ok := found[c]; ok {
			resolved.Interventions = append(resolved.Interventions, next)
		}
	}
	detail.NextSteps = resolved
	return detail, nil
}

// Taboos returns the taboos of a heatmap cell, ErrNotFound when there are none
func (s *Service) Taboos(ctx context.Context, levelID, categoryID int) ([]contracts.Taboo, error) {
	if err := checkCell(levelID, categoryID); err != nil {
		return nil, err
	}

	taboos, err := s.taboos.ListByCell(ctx, levelID, categoryID)
	if err != nil {
		return nil, err
	}
	if len(taboos) == 0 {
		return nil, fmt.Errorf("taboos for level %d category %d: %w", levelID, categoryID, contracts.ErrNotFound)
	}
	return taboos, nil
}

func (s *Service) resolve(ctx context.Context, codes [][2]string) ([]contracts.RankedIntervention, error) {
	list := make([]string, 0, len(codes))
	for _, pc := range codes {
		list = append(list, pc[1])
	}

	found, err := s.interventions.GetByCodes(ctx, list)
	if err != nil {
		return nil, err
	}

	ranked := make([]contracts.RankedIntervention, 0, len(codes))
	for _, pc := range codes {
		iv, ok := found[pc[1]]
		if !ok {
			continue
		}
		ranked = append(ranked, contracts.RankedIntervention{Intervention: iv, Priority: pc[0]})
	}
	return ranked, nil
}

func checkCell(levelID, categoryID int) error {
	if levelID < contracts.MinHeatmapIndex || levelID > contracts.MaxHeatmapIndex {
		return fmt.Errorf("%w: level %d (valid %d..%d)", ErrOutOfRange, levelID, contracts.MinHeatmapIndex, contracts.MaxHeatmapIndex)
	}
	if categoryID < contracts.MinHeatmapIndex || categoryID > contracts.MaxHeatmapIndex {
		return fmt.Errorf("%w: category %d (valid %d..%d)", ErrOutOfRange, categoryID, contracts.MinHeatmapIndex, contracts.MaxHeatmapIndex)
	}
	return nil
}
