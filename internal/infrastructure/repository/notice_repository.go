package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// NoticeRepository persists takedown notices in PostgreSQL. Transitions are
// written under an optimistic version check so concurrent writers on the
// same notice cannot lose updates.
type NoticeRepository struct {
	db *pgxpool.Pool
}

func NewNoticeRepository(db *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{db: db}
}

const noticeColumns = `
	id, ticket_id, content_ref, content_type, claimant,
	jurisdiction, framework, priority, status,
	sla_deadline, counter_notice_deadline, trust_level,
	missing_elements, version, created_at, updated_at`

// Save inserts a new notice. A ticket_id uniqueness violation is surfaced as
// errors.ErrDuplicateTicket so intake can regenerate and retry.
func (r *NoticeRepository) Save(ctx context.Context, n *notice.TakedownNotice) error {
	claimant, err := json.Marshal(n.Claimant)
	if err != nil {
		return fmt.Errorf("failed to marshal claimant: %w", err)
	}

	query := `
		INSERT INTO notices (` + noticeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.db.Exec(ctx, query,
		n.ID, n.TicketID, n.ContentRef, string(n.ContentType), claimant,
		string(n.Jurisdiction), string(n.Framework), string(n.Priority), string(n.Status),
		n.SLADeadline, n.CounterNoticeDeadline, string(n.TrustLevel),
		n.MissingElements, n.Version, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err, "notices_ticket_id_key") {
			return errors.ErrDuplicateTicket
		}
		return fmt.Errorf("failed to insert notice: %w", err)
	}
	return nil
}

// Update persists a guarded transition. The WHERE clause enforces the
// version the caller read; zero rows means a concurrent writer won and the
// caller must reload.
func (r *NoticeRepository) Update(ctx context.Context, n *notice.TakedownNotice) error {
	query := `
		UPDATE notices SET
			priority = $1, status = $2, sla_deadline = $3,
			counter_notice_deadline = $4, missing_elements = $5,
			version = version + 1, updated_at = $6
		WHERE id = $7 AND version = $8`

	tag, err := r.db.Exec(ctx, query,
		string(n.Priority), string(n.Status), n.SLADeadline,
		n.CounterNoticeDeadline, n.MissingElements,
		n.UpdatedAt, n.ID, n.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update notice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewConflictError("notice was modified concurrently")
	}
	n.Version++
	return nil
}

func (r *NoticeRepository) GetByID(ctx context.Context, id uuid.UUID) (*notice.TakedownNotice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *NoticeRepository) GetByTicketID(ctx context.Context, ticketID string) (*notice.TakedownNotice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE ticket_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, ticketID))
}

// ListOverdue returns non-terminal notices whose SLA deadline lies before
// asOf. The service re-checks overdue at read time; this query narrows the
// candidate set.
func (r *NoticeRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*notice.TakedownNotice, error) {
	query := `
		SELECT ` + noticeColumns + `
		FROM notices
		WHERE sla_deadline < $1
		  AND status NOT IN ('resolved_upheld', 'resolved_reversed', 'withdrawn')
		ORDER BY sla_deadline ASC`

	rows, err := r.db.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue notices: %w", err)
	}
	defer rows.Close()

	var out []*notice.TakedownNotice
	for rows.Next() {
		n, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *NoticeRepository) scanOne(row rowScanner) (*notice.TakedownNotice, error) {
	var n notice.TakedownNotice
	var contentType, jurisdiction, framework, priority, status, trustLevel string
	var claimant []byte

	err := row.Scan(
		&n.ID, &n.TicketID, &n.ContentRef, &contentType, &claimant,
		&jurisdiction, &framework, &priority, &status,
		&n.SLADeadline, &n.CounterNoticeDeadline, &trustLevel,
		&n.MissingElements, &n.Version, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, errors.ErrNoticeNotFound
		}
		return nil, fmt.Errorf("failed to scan notice: %w", err)
	}

	if err := json.Unmarshal(claimant, &n.Claimant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claimant: %w", err)
	}
	n.ContentType = notice.ContentType(contentType)
	n.Jurisdiction = notice.Jurisdiction(jurisdiction)
	n.Framework = notice.LegalFramework(framework)
	n.Priority = notice.Priority(priority)
	n.Status = notice.Status(status)
	n.TrustLevel = notice.TrustLevel(trustLevel)
	return &n, nil
}
