package rest

import (
	"time"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// SubmitNoticeRequest is the public intake payload. Statutory elements are
// individually optional: missing ones are flagged on the ticket, never
// rejected at the door.
type SubmitNoticeRequest struct {
	ContentRef  string `json:"content_ref" validate:"required,max=2048"`
	ContentType string `json:"content_type" validate:"omitempty,oneof=video audio image text unknown"`

	// Any code is accepted; unknown codes route to the WIPO catch-all
	// framework with the default SLA tier.
	Jurisdiction string `json:"jurisdiction" validate:"required,max=8"`
	TrustLevel   string `json:"trust_level" validate:"omitempty,oneof=premium elevated standard"`

	ClaimantName      string `json:"claimant_name" validate:"max=512"`
	ClaimantAddress   string `json:"claimant_address" validate:"max=1024"`
	ClaimantEmail     string `json:"claimant_email" validate:"omitempty,email"`
	WorkTitle         string `json:"work_title" validate:"max=1024"`
	InfringementDesc  string `json:"infringement_description" validate:"max=8192"`
	GoodFaithBelief   bool   `json:"good_faith_belief"`
	AccuracyStatement bool   `json:"accuracy_statement"`
	PerjuryStatement  bool   `json:"perjury_statement"`
	Signature         string `json:"signature" validate:"max=512"`
}

func (r SubmitNoticeRequest) elements() notice.StatutoryElements {
	return notice.StatutoryElements{
		ClaimantName:      r.ClaimantName,
		ClaimantAddress:   r.ClaimantAddress,
		ClaimantEmail:     r.ClaimantEmail,
		WorkTitle:         r.WorkTitle,
		InfringementDesc:  r.InfringementDesc,
		GoodFaithBelief:   r.GoodFaithBelief,
		AccuracyStatement: r.AccuracyStatement,
		PerjuryStatement:  r.PerjuryStatement,
		Signature:         r.Signature,
	}
}

// SubmitNoticeResponse acknowledges intake. The ticket is issued even when
// elements are missing; missing_elements tells the claimant what to cure.
type SubmitNoticeResponse struct {
	TicketID        string    `json:"ticket_id"`
	Status          string    `json:"status"`
	Priority        string    `json:"priority"`
	SLADeadline     time.Time `json:"sla_deadline"`
	MissingElements []string  `json:"missing_elements,omitempty"`
}

// CounterNoticeRequest carries the alleged infringer's rebuttal elements.
type CounterNoticeRequest struct {
	ClaimantName      string `json:"claimant_name" validate:"required,max=512"`
	ClaimantAddress   string `json:"claimant_address" validate:"max=1024"`
	ClaimantEmail     string `json:"claimant_email" validate:"omitempty,email"`
	WorkTitle         string `json:"work_title" validate:"max=1024"`
	InfringementDesc  string `json:"statement" validate:"max=8192"`
	GoodFaithBelief   bool   `json:"good_faith_belief"`
	AccuracyStatement bool   `json:"accuracy_statement"`
	PerjuryStatement  bool   `json:"perjury_statement"`
	Signature         string `json:"signature" validate:"required,max=512"`
}

func (r CounterNoticeRequest) elements() notice.StatutoryElements {
	return notice.StatutoryElements{
		ClaimantName:      r.ClaimantName,
		ClaimantAddress:   r.ClaimantAddress,
		ClaimantEmail:     r.ClaimantEmail,
		WorkTitle:         r.WorkTitle,
		InfringementDesc:  r.InfringementDesc,
		GoodFaithBelief:   r.GoodFaithBelief,
		AccuracyStatement: r.AccuracyStatement,
		PerjuryStatement:  r.PerjuryStatement,
		Signature:         r.Signature,
	}
}

// CounterNoticeResponse confirms receipt and echoes the statutory deadline.
type CounterNoticeResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Deadline    time.Time `json:"deadline"`
}

// ResolveRequest closes a notice with an admin ruling.
type ResolveRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=upheld reversed"`
}

// ActionRequest applies a content command while transitioning the notice.
type ActionRequest struct {
	Action string `json:"action" validate:"required,oneof=remove disable geo_block"`
}

// EscalateRequest bumps priority and recomputes the SLA deadline.
type EscalateRequest struct {
	Priority string `json:"priority" validate:"required,oneof=urgent high normal low"`
}

// NoticeStatusResponse is the public status view of a ticket.
type NoticeStatusResponse struct {
	TicketID        string     `json:"ticket_id"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	SLADeadline     time.Time  `json:"sla_deadline"`
	IsOverdue       bool       `json:"is_overdue"`
	CounterDeadline *time.Time `json:"counter_notice_deadline,omitempty"`
	MissingElements []string   `json:"missing_elements,omitempty"`
}

// OverdueNoticeResponse is one row of the operator escalation list.
type OverdueNoticeResponse struct {
	TicketID     string    `json:"ticket_id"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	Jurisdiction string    `json:"jurisdiction"`
	SLADeadline  time.Time `json:"sla_deadline"`
}

// AuditEventResponse is one entry of a notice's audit trail.
type AuditEventResponse struct {
	ID          string                 `json:"id"`
	ActionType  string                 `json:"action_type"`
	IsAutomated bool                   `json:"is_automated"`
	PerformedBy *string                `json:"performed_by,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
