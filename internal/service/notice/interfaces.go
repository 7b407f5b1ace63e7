package notice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/fingerprint"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/infringer"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// NoticeRepository persists takedown notices. Save must surface a ticket-ID
// uniqueness violation as errors.ErrDuplicateTicket so intake can regenerate
// and retry. Update must enforce the optimistic version check and return a
// conflict error on a concurrent write.
type NoticeRepository interface {
	Save(ctx context.Context, n *notice.TakedownNotice) error
	Update(ctx context.Context, n *notice.TakedownNotice) error
	GetByID(ctx context.Context, id uuid.UUID) (*notice.TakedownNotice, error)
	GetByTicketID(ctx context.Context, ticketID string) (*notice.TakedownNotice, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*notice.TakedownNotice, error)
}

// CounterNoticeRepository persists counter-notices.
type CounterNoticeRepository interface {
	Save(ctx context.Context, cn *notice.CounterNotice) error
	GetByNoticeID(ctx context.Context, noticeID uuid.UUID) (*notice.CounterNotice, error)
}

// AuditRepository is the append-only audit trail. There is deliberately no
// update or delete surface.
type AuditRepository interface {
	Save(ctx context.Context, event *audit.Event) error
	ListByNoticeID(ctx context.Context, noticeID uuid.UUID) ([]*audit.Event, error)
}

// InfringerRepository tracks strike accounting per content owner.
// GetByArtistID returns errors.ErrInfringerNotFound for an unknown artist.
type InfringerRepository interface {
	GetByArtistID(ctx context.Context, artistID uuid.UUID) (*infringer.Record, error)
	Save(ctx context.Context, record *infringer.Record) error
}

// ContentStore controls hosted content. Commands are expected to be
// idempotent on the remote side.
type ContentStore interface {
	Remove(ctx context.Context, contentRef string) error
	Disable(ctx context.Context, contentRef string) error
	GeoBlock(ctx context.Context, contentRef string, jurisdiction notice.Jurisdiction) error
	Reinstate(ctx context.Context, contentRef string) error
	Owner(ctx context.Context, contentRef string) (uuid.UUID, error)
}

// Notifier delivers fire-and-forget notifications. Delivery failure never
// rolls back a state transition.
type Notifier interface {
	NotifyClaimant(ctx context.Context, n *notice.TakedownNotice, subject string) error
	NotifyInfringer(ctx context.Context, n *notice.TakedownNotice, subject string) error
	ForwardNotice(ctx context.Context, n *notice.TakedownNotice) error
}

// TrustRegistry resolves a claimant's trusted-flagger tier.
type TrustRegistry interface {
	TrustLevelFor(ctx context.Context, claimantEmail string) (notice.TrustLevel, error)
}

// Scanner runs a fingerprint scan for a notice.
type Scanner interface {
	ScanNotice(ctx context.Context, n *notice.TakedownNotice) (*fingerprint.ScanRecord, error)
}
