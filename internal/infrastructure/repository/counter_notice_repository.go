package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// CounterNoticeRepository persists counter-notices in PostgreSQL.
type CounterNoticeRepository struct {
	db *pgxpool.Pool
}

func NewCounterNoticeRepository(db *pgxpool.Pool) *CounterNoticeRepository {
	return &CounterNoticeRepository{db: db}
}

func (r *CounterNoticeRepository) Save(ctx context.Context, cn *notice.CounterNotice) error {
	elements, err := json.Marshal(cn.Elements)
	if err != nil {
		return fmt.Errorf("failed to marshal counter-notice elements: %w", err)
	}

	query := `
		INSERT INTO counter_notices (id, notice_id, ticket_id, elements, submitted_at, deadline)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.Exec(ctx, query,
		cn.ID, cn.NoticeID, cn.TicketID, elements, cn.SubmittedAt, cn.Deadline,
	)
	if err != nil {
		return fmt.Errorf("failed to insert counter-notice: %w", err)
	}
	return nil
}

func (r *CounterNoticeRepository) GetByNoticeID(ctx context.Context, noticeID uuid.UUID) (*notice.CounterNotice, error) {
	query := `
		SELECT id, notice_id, ticket_id, elements, submitted_at, deadline
		FROM counter_notices
		WHERE notice_id = $1`

	var cn notice.CounterNotice
	var elements []byte
	err := r.db.QueryRow(ctx, query, noticeID).Scan(
		&cn.ID, &cn.NoticeID, &cn.TicketID, &elements, &cn.SubmittedAt, &cn.Deadline,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, errors.ErrCounterNoticeNotFound
		}
		return nil, fmt.Errorf("failed to scan counter-notice: %w", err)
	}
	if err := json.Unmarshal(elements, &cn.Elements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal counter-notice elements: %w", err)
	}
	return &cn, nil
}
