package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/infringer"
)

// InfringerRepository persists strike accounting per content owner.
type InfringerRepository struct {
	db *pgxpool.Pool
}

func NewInfringerRepository(db *pgxpool.Pool) *InfringerRepository {
	return &InfringerRepository{db: db}
}

func (r *InfringerRepository) GetByArtistID(ctx context.Context, artistID uuid.UUID) (*infringer.Record, error) {
	query := `
		SELECT artist_id, strike_count, termination_eligible, last_strike_at, created_at, updated_at
		FROM infringer_records
		WHERE artist_id = $1`

	var rec infringer.Record
	err := r.db.QueryRow(ctx, query, artistID).Scan(
		&rec.ArtistID, &rec.StrikeCount, &rec.TerminationEligible,
		&rec.LastStrikeAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, errors.ErrInfringerNotFound
		}
		return nil, fmt.Errorf("failed to scan infringer record: %w", err)
	}
	return &rec, nil
}

// Save upserts the record keyed by artist. Strike counts only grow, so the
// last write after an upheld resolution is authoritative.
func (r *InfringerRepository) Save(ctx context.Context, rec *infringer.Record) error {
	query := `
		INSERT INTO infringer_records (artist_id, strike_count, termination_eligible, last_strike_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (artist_id) DO UPDATE SET
			strike_count = EXCLUDED.strike_count,
			termination_eligible = EXCLUDED.termination_eligible,
			last_strike_at = EXCLUDED.last_strike_at,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		rec.ArtistID, rec.StrikeCount, rec.TerminationEligible,
		rec.LastStrikeAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert infringer record: %w", err)
	}
	return nil
}
