// internal/store/rankings.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"portfolio-service/internal/model"
)

// ReplaceRankings deletes every existing ranking row and inserts the
// fresh set inside one transaction. No history is retained across
// generation runs.
func (d *DB) ReplaceRankings(ctx context.Context, rankings []model.IndustryRanking) error {
	return d.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM industry_rankings`); err != nil {
			return fmt.Errorf("clearing rankings: %w", err)
		}

		for _, r := range rankings {
			if _, err := tx.Exec(ctx,
				`INSERT INTO industry_rankings
					(industry_name, rank, relevance_score, reasoning, key_skills,
					 is_current_industry, is_active)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				r.IndustryName, r.Rank, r.RelevanceScore, r.Reasoning, r.KeySkills,
				r.IsCurrentIndustry, r.IsActive,
			); err != nil {
				return fmt.Errorf("inserting ranking %q: %w", r.IndustryName, err)
			}
		}
		return nil
	})
}

// ListRankings returns the active ranking set ordered by rank.
func (d *DB) ListRankings(ctx context.Context) ([]model.IndustryRanking, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, industry_name, rank, relevance_score, reasoning, key_skills,
		        is_current_industry, is_active
		 FROM industry_rankings WHERE is_active ORDER BY rank ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing rankings: %w", err)
	}
	defer rows.Close()

	var rankings []model.IndustryRanking
	for rows.Next() {
		var r model.IndustryRanking
		if err := rows.Scan(&r.ID, &r.IndustryName, &r.Rank, &r.RelevanceScore,
			&r.Reasoning, &r.KeySkills, &r.IsCurrentIndustry, &r.IsActive); err != nil {
			return nil, err
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}

// GetRankingSettings reads the single settings row, returning zero values
// if no generation has run yet.
func (d *DB) GetRankingSettings(ctx context.Context) (model.RankingSettings, error) {
	var s model.RankingSettings
	err := d.pool.QueryRow(ctx,
		`SELECT current_industry, last_generated_at FROM ranking_settings`,
	).Scan(&s.CurrentIndustry, &s.LastGeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RankingSettings{}, nil
	}
	if err != nil {
		return model.RankingSettings{}, fmt.Errorf("reading ranking settings: %w", err)
	}
	return s, nil
}

// SaveRankingSettings writes the single settings row. The table's schema
// allows exactly one row, so this is an upsert on that row.
func (d *DB) SaveRankingSettings(ctx context.Context, s model.RankingSettings) error {
	var last *time.Time
	if s.LastGeneratedAt != nil {
		t := s.LastGeneratedAt.UTC()
		last = &t
	}
	_, err := d.pool.Exec(ctx,
		`INSERT INTO ranking_settings (id, current_industry, last_generated_at)
		 VALUES (TRUE, $1, $2)
		 ON CONFLICT (id) DO UPDATE
		 SET current_industry = EXCLUDED.current_industry,
		     last_generated_at = EXCLUDED.last_generated_at`,
		s.CurrentIndustry, last,
	)
	if err != nil {
		return fmt.Errorf("saving ranking settings: %w", err)
	}
	return nil
}
