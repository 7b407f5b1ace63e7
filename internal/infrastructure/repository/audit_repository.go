package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
)

// AuditRepository is the append-only event trail. It exposes insert and read
// operations only; evidentiary integrity forbids update and delete.
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Save(ctx context.Context, event *audit.Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal event details: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, notice_id, action_type, is_automated, performed_by, occurred_at, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		event.ID, event.NoticeID, string(event.ActionType),
		event.IsAutomated, event.PerformedBy, event.Timestamp, details,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByNoticeID(ctx context.Context, noticeID uuid.UUID) ([]*audit.Event, error) {
	query := `
		SELECT id, notice_id, action_type, is_automated, performed_by, occurred_at, details
		FROM audit_events
		WHERE notice_id = $1
		ORDER BY occurred_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, noticeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var out []*audit.Event
	for rows.Next() {
		var e audit.Event
		var actionType string
		var details []byte
		if err := rows.Scan(&e.ID, &e.NoticeID, &actionType, &e.IsAutomated, &e.PerformedBy, &e.Timestamp, &details); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.ActionType = audit.ActionType(actionType)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event details: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
