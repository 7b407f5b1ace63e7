package notice

import (
	"time"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// SubmitNoticeRequest carries the intake payload. TrustLevel is the tier the
// claimant asserts; the trust registry is consulted first and this value is
// only the fallback when the registry is unavailable.
type SubmitNoticeRequest struct {
	ContentRef   string
	ContentType  notice.ContentType
	Elements     notice.StatutoryElements
	Jurisdiction notice.Jurisdiction
	TrustLevel   notice.TrustLevel
}

// StatusResult is the read model for a ticket lookup.
type StatusResult struct {
	TicketID              string          `json:"ticket_id"`
	Status                notice.Status   `json:"status"`
	Priority              notice.Priority `json:"priority"`
	SLADeadline           time.Time       `json:"sla_deadline"`
	CounterNoticeDeadline *time.Time      `json:"counter_notice_deadline,omitempty"`
	IsOverdue             bool            `json:"is_overdue"`
	MissingElements       []string        `json:"missing_elements,omitempty"`
}

// ResolutionOutcome is an admin's final disposition of a notice.
type ResolutionOutcome string

const (
	OutcomeUpheld   ResolutionOutcome = "upheld"
	OutcomeReversed ResolutionOutcome = "reversed"
)

// ContentAction is a direct enforcement command against reported content.
type ContentAction string

const (
	ContentActionRemove   ContentAction = "remove"
	ContentActionDisable  ContentAction = "disable"
	ContentActionGeoBlock ContentAction = "geo_block"
)
