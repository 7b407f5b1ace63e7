package fingerprint

import (
	"context"

	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/fingerprint"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// Provider is an external content-matching engine.
type Provider interface {
	Name() string
	Scan(ctx context.Context, contentRef string, contentType notice.ContentType) (*ProviderResult, error)
}

// ProviderResult is the raw match verdict from a Provider.
type ProviderResult struct {
	FingerprintHash string
	MatchFound      bool
	Confidence      float64
}

// ScanRepository persists scan records. Every scan attempt is recorded,
// including failures.
type ScanRepository interface {
	Save(ctx context.Context, record *fingerprint.ScanRecord) error
}

// ContentStore controls availability of hosted content.
type ContentStore interface {
	Disable(ctx context.Context, contentRef string) error
}

// AuditRepository appends events to the audit trail.
type AuditRepository interface {
	Save(ctx context.Context, event *audit.Event) error
}

// ReviewQueue routes notices that need a human decision.
type ReviewQueue interface {
	EnqueueManualReview(ctx context.Context, noticeID uuid.UUID, reason string) error
}
