package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/fingerprint"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// ScanRepository persists fingerprint scan attempts.
type ScanRepository struct {
	db *pgxpool.Pool
}

func NewScanRepository(db *pgxpool.Pool) *ScanRepository {
	return &ScanRepository{db: db}
}

func (r *ScanRepository) Save(ctx context.Context, rec *fingerprint.ScanRecord) error {
	query := `
		INSERT INTO fingerprint_scans (
			id, content_id, content_type, fingerprint_hash, scan_provider,
			match_found, confidence_score, auto_action_taken, scan_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.ContentID, string(rec.ContentType), rec.FingerprintHash, rec.ScanProvider,
		rec.MatchFound, rec.ConfidenceScore, rec.AutoActionTaken, string(rec.ScanStatus), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan record: %w", err)
	}
	return nil
}

// ListByContentID returns every scan attempt recorded for a piece of
// content, newest first.
func (r *ScanRepository) ListByContentID(ctx context.Context, contentID string) ([]*fingerprint.ScanRecord, error) {
	query := `
		SELECT id, content_id, content_type, fingerprint_hash, scan_provider,
		       match_found, confidence_score, auto_action_taken, scan_status, created_at
		FROM fingerprint_scans
		WHERE content_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan records: %w", err)
	}
	defer rows.Close()

	var out []*fingerprint.ScanRecord
	for rows.Next() {
		var rec fingerprint.ScanRecord
		var contentType, status string
		if err := rows.Scan(
			&rec.ID, &rec.ContentID, &contentType, &rec.FingerprintHash, &rec.ScanProvider,
			&rec.MatchFound, &rec.ConfidenceScore, &rec.AutoActionTaken, &status, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.ContentType = notice.ContentType(contentType)
		rec.ScanStatus = fingerprint.ScanStatus(status)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
