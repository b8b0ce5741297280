// Package transform pivots long-format capability scores into one wide row
// per respondent.
package transform

import (
	"errors"
	"fmt"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/pkg/config"
)

// ErrDuplicateScore is returned under MergeErrorOnDuplicate when a
// respondent has two records for the same construct
var ErrDuplicateScore = errors.New("duplicate score for respondent construct")

// MergePolicy decides what happens when a respondent has several records
// for the same construct
type MergePolicy string

const (
	// MergeLastWins keeps the later record in input order
	MergeLastWins MergePolicy = "last_wins"
	// MergeErrorOnDuplicate rejects the input
	MergeErrorOnDuplicate MergePolicy = "error"
)

// ParseMergePolicy parses a configured policy name
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(s) {
	case MergeLastWins, "":
		return MergeLastWins, nil
	case MergeErrorOnDuplicate:
		return MergeErrorOnDuplicate, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q (valid: %s, %s)", s, MergeLastWins, MergeErrorOnDuplicate)
	}
}

// Default demographic values
const (
	DefaultRegion       = "Unknown"
	DefaultUserLanguage = "EN"
)

// Config controls the pivot
type Config struct {
	MergePolicy  MergePolicy
	UserLanguage string
}

// DefaultConfig returns last-wins merging with English as user language
func DefaultConfig() Config {
	return Config{
		MergePolicy:  MergeLastWins,
		UserLanguage: DefaultUserLanguage,
	}
}

// ConfigFrom adapts the application configuration
func ConfigFrom(cfg config.TransformConfig) (Config, error) {
	policy, err := ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		return Config{}, err
	}
	return Config{MergePolicy: policy, UserLanguage: cfg.UserLanguage}, nil
}

// Transformer converts long-format records to wide rows
// ⭐ SSOT: long-to-wide pivot of capability scores
type Transformer struct {
	cfg Config
}

// NewTransformer creates a transformer with a fixed configuration
func NewTransformer(cfg Config) *Transformer {
	if cfg.MergePolicy == "" {
		cfg.MergePolicy = MergeLastWins
	}
	if cfg.UserLanguage == "" {
		cfg.UserLanguage = DefaultUserLanguage
	}
	return &Transformer{cfg: cfg}
}

// Config returns the transformer's configuration
func (t *Transformer) Config() Config {
	return t.cfg
}

// Transform groups scores by respondent in order of first appearance.
// Demographics come from each respondent's first record. Empty input
// returns an empty, non-nil slice.
func (t *Transformer) Transform(scores []contracts.ScoreRecord) ([]contracts.WideRow, error) {
	rows := make([]contracts.WideRow, 0)
	index := make(map[string]int)

	for i, r := range scores {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		pos, seen := index[r.RespondentID]
		if !seen {
			pos = len(rows)
			index[r.RespondentID] = pos
			rows = append(rows, t.seed(r))
		}

		row := &rows[pos]
		if _, dup := row.Constructs[r.ConstructID]; dup && t.cfg.MergePolicy == MergeErrorOnDuplicate {
			return nil, fmt.Errorf("%w: respondent %s construct %d (record %d)",
				ErrDuplicateScore, r.RespondentID, r.ConstructID, i)
		}
		row.Constructs[r.ConstructID] = r.Score
	}

	return rows, nil
}

func (t *Transformer) seed(r contracts.ScoreRecord) contracts.WideRow {
	region := r.CountrySynthetic
	if region == "" {
		region = DefaultRegion
	}
	return contracts.WideRow{
		RespondentID:   r.RespondentID,
		Region:         region,
		EmploymentType: optional(r.RoleSynthetic),
		UserLanguage:   t.cfg.UserLanguage,
		Industry:       optional(r.IndustrySynthetic),
		Continent:      optional(r.ContinentSynthetic),
		Role:           optional(r.RoleSynthetic),
		Constructs:     make(map[int]float64),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
