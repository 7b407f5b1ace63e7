package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// TrustedFlaggerRepository is the authoritative trusted-flagger registry.
// Claimants not enrolled resolve to an empty trust level; the intake service
// then falls back to the tier claimed on the notice.
type TrustedFlaggerRepository struct {
	db *pgxpool.Pool
}

func NewTrustedFlaggerRepository(db *pgxpool.Pool) *TrustedFlaggerRepository {
	return &TrustedFlaggerRepository{db: db}
}

func (r *TrustedFlaggerRepository) TrustLevelFor(ctx context.Context, claimantEmail string) (notice.TrustLevel, error) {
	var level string
	err := r.db.QueryRow(ctx,
		`SELECT trust_level FROM trusted_flaggers WHERE claimant_email = $1`,
		normalizeEmail(claimantEmail),
	).Scan(&level)
	if err != nil {
		if IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query trusted flagger: %w", err)
	}
	return notice.TrustLevel(level), nil
}

// Enroll registers or updates a trusted flagger.
func (r *TrustedFlaggerRepository) Enroll(ctx context.Context, claimantEmail string, level notice.TrustLevel) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO trusted_flaggers (claimant_email, trust_level)
		VALUES ($1, $2)
		ON CONFLICT (claimant_email) DO UPDATE SET
			trust_level = EXCLUDED.trust_level,
			updated_at = now()`,
		normalizeEmail(claimantEmail), string(level),
	)
	if err != nil {
		return fmt.Errorf("failed to enroll trusted flagger: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
