package interventions

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/ainavigator/backend/internal/catalog"
	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// Seed replaces the mappings and taboos with the catalogue's and upserts its
// interventions. Interventions missing from the catalogue are kept.
func (r *Repository) Seed(ctx context.Context, c *catalog.Catalog) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{
		"taboos",
		"intervention_next_steps",
		"intervention_sentiment_mappings",
		"intervention_capability_mappings",
	} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	batch := &pgx.Batch{}

	for _, iv := range c.Interventions {
		batch.Queue(`
			INSERT INTO interventions (code, name, level, core_function, description)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				level = EXCLUDED.level,
				core_function = EXCLUDED.core_function,
				description = EXCLUDED.description
		`, iv.Code, iv.Name, iv.Level, iv.CoreFunction, iv.Description)
	}

	for _, m := range c.CapabilityMappings {
		batch.Queue(`
			INSERT INTO intervention_capability_mappings (
				dimension_id, dimension_name, rationale,
				primary_intervention_code, secondary_intervention_code, tertiary_intervention_code
			) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		`, m.DimensionID, m.DimensionName, m.Rationale, m.Primary, m.Secondary, m.Tertiary)
	}

	for _, m := range c.CellMappings {
		batch.Queue(`
			INSERT INTO intervention_sentiment_mappings (
				level_id, category_id, level_name, category, reason,
				primary_intervention_code, secondary_intervention_code, tertiary_intervention_code
			) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		`, m.LevelID, m.CategoryID, m.LevelName, m.Category, m.Reason, m.Primary, m.Secondary, m.Tertiary)
	}

	for _, ns := range c.NextSteps {
		next := nextColumns(ns)
		batch.Queue(`
			INSERT INTO intervention_next_steps (
				intervention_code, primary_next_code, secondary_next_code, tertiary_next_code, rationale
			) VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		`, ns.InterventionCode, next[0], next[1], next[2], ns.Rationale)
	}

	for _, t := range c.Taboos {
		batch.Queue(`
			INSERT INTO taboos (
				level_id, category_id, level_name, root_cause, name, short_description,
				description, how_it_shows_up, possible_actions, root_cause_explanation
			) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''))
		`, t.LevelID, t.CategoryID, t.LevelName, t.RootCause, t.Name, t.ShortDescription,
			t.Description, t.HowItShowsUp, t.PossibleActions, t.RootCauseExplanation)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("seed statement %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func nextColumns(ns contracts.NextSteps) [3]string {
	var out [3]string
	copy(out[:], ns.NextCodes)
	return out
}
