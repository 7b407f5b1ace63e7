package notice

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
)

// TakedownNotice is the aggregate root of the compliance engine. It is
// created on intake, mutated only through guarded lifecycle transitions and
// never physically deleted.
type TakedownNotice struct {
	ID       uuid.UUID `json:"id"`
	TicketID string    `json:"ticket_id"`

	// Reported content
	ContentRef  string      `json:"content_ref"`
	ContentType ContentType `json:"content_type"`

	// Claimant statutory fields
	Claimant StatutoryElements `json:"claimant"`

	// Legal routing
	Jurisdiction Jurisdiction   `json:"jurisdiction"`
	Framework    LegalFramework `json:"framework"`

	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`

	// Deadlines. SLADeadline is fixed at creation; only an explicit,
	// audited escalation may move it.
	SLADeadline           time.Time  `json:"sla_deadline"`
	CounterNoticeDeadline *time.Time `json:"counter_notice_deadline,omitempty"`

	// Trusted-flagger tier; empty means standard handling.
	TrustLevel TrustLevel `json:"trust_level,omitempty"`

	// Intake validation outcome. Incompleteness flags the notice for
	// remediation, it never blocks ticket issuance.
	MissingElements []string `json:"missing_elements,omitempty"`

	// Optimistic concurrency token, bumped by the persistence layer on
	// every guarded transition.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ContentType string

const (
	ContentTypeVideo   ContentType = "video"
	ContentTypeAudio   ContentType = "audio"
	ContentTypeImage   ContentType = "image"
	ContentTypeText    ContentType = "text"
	ContentTypeUnknown ContentType = "unknown"
)

func (c ContentType) IsValid() bool {
	switch c {
	case ContentTypeVideo, ContentTypeAudio, ContentTypeImage, ContentTypeText, ContentTypeUnknown:
		return true
	}
	return false
}

// StatutoryElements carries the legal elements of a notice. For the DMCA
// framework all nine are required; absence is flagged, never rejected.
type StatutoryElements struct {
	ClaimantName      string `json:"claimant_name"`
	ClaimantAddress   string `json:"claimant_address"`
	ClaimantEmail     string `json:"claimant_email"`
	WorkTitle         string `json:"work_title"`
	InfringementDesc  string `json:"infringement_description"`
	GoodFaithBelief   bool   `json:"good_faith_belief"`
	AccuracyStatement bool   `json:"accuracy_statement"`
	PerjuryStatement  bool   `json:"perjury_statement"`
	Signature         string `json:"signature"`
}

type Jurisdiction string

const (
	JurisdictionUS Jurisdiction = "US"
	JurisdictionEU Jurisdiction = "EU"
	JurisdictionUK Jurisdiction = "UK"
	JurisdictionCA Jurisdiction = "CA"
	JurisdictionAU Jurisdiction = "AU"
	JurisdictionWW Jurisdiction = "WW"
)

func (j Jurisdiction) IsValid() bool {
	switch j {
	case JurisdictionUS, JurisdictionEU, JurisdictionUK, JurisdictionCA, JurisdictionAU, JurisdictionWW:
		return true
	}
	return false
}

// RequiresForwarding reports whether the jurisdiction operates a
// notice-and-notice regime: the platform forwards the notice to the alleged
// infringer instead of acting on the content directly. Only Canada today.
func (j Jurisdiction) RequiresForwarding() bool {
	return j == JurisdictionCA
}

type LegalFramework string

const (
	FrameworkDMCA512     LegalFramework = "DMCA_512"
	FrameworkDSAArt16    LegalFramework = "DSA_ART16"
	FrameworkCDPA1988    LegalFramework = "CDPA_1988"
	FrameworkCANotice    LegalFramework = "CA_NOTICE"
	FrameworkAUCopyright LegalFramework = "AU_COPYRIGHT"
	FrameworkWIPOGlobal  LegalFramework = "WIPO_GLOBAL"
)

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

type TrustLevel string

const (
	TrustLevelPremium  TrustLevel = "premium"
	TrustLevelElevated TrustLevel = "elevated"
	TrustLevelStandard TrustLevel = "standard"
)

// NewTakedownNotice assembles a notice at intake. The ticket ID, final
// priority and SLA deadline must already be resolved by the caller; the
// notice starts in StatusSubmitted.
func NewTakedownNotice(clk Clock, ticketID, contentRef string, contentType ContentType, elements StatutoryElements, jurisdiction Jurisdiction, priority Priority, trustLevel TrustLevel) (*TakedownNotice, error) {
	if clk == nil {
		clk = RealClock{}
	}
	if ticketID == "" {
		return nil, errors.NewValidationError("MISSING_TICKET_ID", "ticket ID is required")
	}
	if contentRef == "" {
		return nil, errors.NewValidationError("MISSING_CONTENT_REF", "content reference is required")
	}

	now := clk.Now()
	return &TakedownNotice{
		ID:           uuid.New(),
		TicketID:     ticketID,
		ContentRef:   contentRef,
		ContentType:  contentType,
		Claimant:     elements,
		Jurisdiction: jurisdiction,
		Framework:    DefaultFramework(jurisdiction),
		Priority:     priority,
		Status:       StatusSubmitted,
		SLADeadline:  CalculateSLADeadline(clk, jurisdiction, priority),
		TrustLevel:   trustLevel,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Transition moves the notice to the target status if the lifecycle table
// permits it. A rejected transition leaves the notice untouched.
func (n *TakedownNotice) Transition(clk Clock, target Status) error {
	if clk == nil {
		clk = RealClock{}
	}
	if err := CanTransition(n.Status, target); err != nil {
		return err
	}
	n.Status = target
	n.UpdatedAt = clk.Now()
	return nil
}

// Escalate bumps the priority and recomputes the SLA deadline. This is the
// only path that moves SLADeadline after creation; callers must record an
// accompanying audit event.
func (n *TakedownNotice) Escalate(clk Clock, to Priority) error {
	if clk == nil {
		clk = RealClock{}
	}
	if n.Status.IsTerminal() {
		return errors.ErrTerminalNotice
	}
	n.Priority = to
	n.SLADeadline = CalculateSLADeadline(clk, n.Jurisdiction, to)
	n.UpdatedAt = clk.Now()
	return nil
}

// IsOverdue reports whether the SLA deadline has lapsed. Terminal notices
// are never overdue regardless of the deadline. Computed at read time.
func (n *TakedownNotice) IsOverdue(clk Clock) bool {
	if clk == nil {
		clk = RealClock{}
	}
	return IsOverdueSLA(clk, n.SLADeadline, n.Status)
}
