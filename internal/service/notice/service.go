package notice

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/infringer"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
	"github.com/davidleathers/takedown-compliance-engine/internal/service/assessment"
)

// maxTicketAttempts bounds the generate-and-retry loop on ticket-ID
// uniqueness conflicts.
const maxTicketAttempts = 5

// Config carries the policy knobs of the compliance engine.
type Config struct {
	StrikeThreshold           int
	CounterNoticeBusinessDays int

	// Clock overrides time for tests; nil means wall clock.
	Clock notice.Clock
}

// Service orchestrates the notice lifecycle: intake, enforcement actions,
// counter-notices, resolution and strike accounting. Each transition is
// persisted under an optimistic version check and writes exactly one audit
// event.
type Service struct {
	notices        NoticeRepository
	counterNotices CounterNoticeRepository
	auditRepo      AuditRepository
	infringers     InfringerRepository
	content        ContentStore
	notifier       Notifier
	trust          TrustRegistry
	scanner        Scanner
	assessor       assessment.Assessor
	cfg            Config
	clk            notice.Clock
	logger         *zap.Logger
}

// NewService wires the compliance engine. The assessor is expected to be
// fail-open already; the service still defends against a nil result.
func NewService(
	notices NoticeRepository,
	counterNotices CounterNoticeRepository,
	auditRepo AuditRepository,
	infringers InfringerRepository,
	content ContentStore,
	notifier Notifier,
	trust TrustRegistry,
	scanner Scanner,
	assessor assessment.Assessor,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.StrikeThreshold <= 0 {
		cfg.StrikeThreshold = infringer.DefaultStrikeThreshold
	}
	if cfg.CounterNoticeBusinessDays <= 0 {
		cfg.CounterNoticeBusinessDays = notice.DefaultCounterNoticeBusinessDays
	}
	clk := cfg.Clock
	if clk == nil {
		clk = notice.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		notices:        notices,
		counterNotices: counterNotices,
		auditRepo:      auditRepo,
		infringers:     infringers,
		content:        content,
		notifier:       notifier,
		trust:          trust,
		scanner:        scanner,
		assessor:       assessor,
		cfg:            cfg,
		clk:            clk,
		logger:         logger,
	}
}

// SubmitNotice runs intake. A ticket is always issued when the request is
// well-formed: incomplete statutory elements are flagged, not rejected, and
// risk-engine or trust-registry outages degrade to defaults.
func (s *Service) SubmitNotice(ctx context.Context, req SubmitNoticeRequest) (*notice.TakedownNotice, error) {
	if req.ContentRef == "" {
		return nil, errors.NewValidationError("MISSING_CONTENT_REF", "content reference is required")
	}
	if !req.ContentType.IsValid() {
		req.ContentType = notice.ContentTypeUnknown
	}

	trustLevel := s.resolveTrustLevel(ctx, req)

	framework := notice.DefaultFramework(req.Jurisdiction)
	validation := notice.ValidateStatutoryElements(req.Elements, framework)

	result, err := s.assessor.Assess(ctx, assessment.Request{
		ContentRef:   req.ContentRef,
		ContentType:  req.ContentType,
		Jurisdiction: req.Jurisdiction,
		ClaimantName: req.Elements.ClaimantName,
		WorkTitle:    req.Elements.WorkTitle,
		TrustLevel:   trustLevel,
	})
	if err != nil || result == nil {
		result = assessment.DefaultResult()
	}

	priority := notice.DeterminePriority(result.SuggestedPriority, trustLevel)

	n, err := s.createWithUniqueTicket(ctx, req, priority, trustLevel, validation.Missing)
	if err != nil {
		return nil, err
	}

	s.recordSystemEvent(ctx, n, audit.ActionNoticeReceived, map[string]interface{}{
		"jurisdiction": string(n.Jurisdiction),
		"framework":    string(n.Framework),
		"priority":     string(n.Priority),
		"trust_level":  string(n.TrustLevel),
	})
	s.recordSystemEvent(ctx, n, audit.ActionStatutoryValidation, map[string]interface{}{
		"valid":   validation.Valid,
		"missing": validation.Missing,
	})

	s.advanceToTriage(ctx, n, result)

	if s.scanner != nil {
		record, err := s.scanner.ScanNotice(ctx, n)
		switch {
		case err != nil:
			s.logger.Error("fingerprint scan error during intake",
				zap.String("ticket_id", n.TicketID), zap.Error(err))
		case record != nil && record.AutoActionTaken:
			// Content is already down; the lifecycle must follow so a
			// counter-notice becomes admissible without a redundant
			// operator action. The scanner audited the disable.
			s.advanceAfterAutoAction(ctx, n)
		}
	}

	if n.Jurisdiction.RequiresForwarding() {
		s.forwardNotice(ctx, n)
	}

	return n, nil
}

func (s *Service) resolveTrustLevel(ctx context.Context, req SubmitNoticeRequest) notice.TrustLevel {
	if req.Elements.ClaimantEmail == "" {
		return req.TrustLevel
	}
	level, err := s.trust.TrustLevelFor(ctx, req.Elements.ClaimantEmail)
	if err != nil {
		s.logger.Warn("trust registry unavailable, using claimed tier",
			zap.String("claimant_email", req.Elements.ClaimantEmail), zap.Error(err))
		return req.TrustLevel
	}
	if level == "" {
		return req.TrustLevel
	}
	return level
}

func (s *Service) createWithUniqueTicket(ctx context.Context, req SubmitNoticeRequest, priority notice.Priority, trustLevel notice.TrustLevel, missing []string) (*notice.TakedownNotice, error) {
	for attempt := 1; attempt <= maxTicketAttempts; attempt++ {
		ticketID, err := notice.GenerateTicketID(s.clk)
		if err != nil {
			return nil, errors.NewInternalError("failed to generate ticket ID").WithCause(err)
		}

		n, err := notice.NewTakedownNotice(s.clk, ticketID, req.ContentRef, req.ContentType, req.Elements, req.Jurisdiction, priority, trustLevel)
		if err != nil {
			return nil, err
		}
		n.MissingElements = missing

		err = s.notices.Save(ctx, n)
		if err == nil {
			return n, nil
		}
		if !stderrors.Is(err, errors.ErrDuplicateTicket) {
			return nil, errors.NewInternalError("failed to save notice").WithCause(err)
		}
		s.logger.Warn("ticket ID collision, regenerating",
			zap.String("ticket_id", ticketID), zap.Int("attempt", attempt))
	}
	return nil, errors.NewInternalError("exhausted ticket ID generation attempts")
}

// advanceToTriage moves a freshly saved notice into triage. Failure does not
// fail intake: the ticket is already issued and an operator can re-triage.
func (s *Service) advanceToTriage(ctx context.Context, n *notice.TakedownNotice, result *assessment.Result) {
	if err := n.Transition(s.clk, notice.StatusTriage); err != nil {
		s.logger.Error("triage transition rejected", zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	if err := s.notices.Update(ctx, n); err != nil {
		s.logger.Error("failed to persist triage transition",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	s.recordSystemEvent(ctx, n, audit.ActionAutomatedTriage, map[string]interface{}{
		"risk_level":         string(result.RiskLevel),
		"suggested_priority": string(result.SuggestedPriority),
		"assessed_valid":     result.IsValid,
		"notes":              result.Notes,
	})
}

// advanceAfterAutoAction moves a notice whose content the scanner already
// disabled into action_taken. Failure does not fail intake.
func (s *Service) advanceAfterAutoAction(ctx context.Context, n *notice.TakedownNotice) {
	if err := n.Transition(s.clk, notice.StatusActionTaken); err != nil {
		s.logger.Error("action_taken transition rejected after auto-disable",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	if err := s.notices.Update(ctx, n); err != nil {
		s.logger.Error("failed to persist auto-action transition",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
	}
}

// forwardNotice handles the Canadian notice-and-notice regime: the notice is
// forwarded to the alleged infringer instead of acting on the content.
func (s *Service) forwardNotice(ctx context.Context, n *notice.TakedownNotice) {
	if err := s.notifier.ForwardNotice(ctx, n); err != nil {
		s.logger.Error("notice forwarding failed",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	if err := n.Transition(s.clk, notice.StatusNotified); err != nil {
		s.logger.Error("notified transition rejected",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	if err := s.notices.Update(ctx, n); err != nil {
		s.logger.Error("failed to persist notified transition",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	s.recordSystemEvent(ctx, n, audit.ActionNoticeForwarded, map[string]interface{}{
		"jurisdiction": string(n.Jurisdiction),
	})
}

// GetNoticeStatus returns the read model for a ticket. Overdue is computed
// at read time, never cached.
func (s *Service) GetNoticeStatus(ctx context.Context, ticketID string) (*StatusResult, error) {
	n, err := s.getByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return &StatusResult{
		TicketID:              n.TicketID,
		Status:                n.Status,
		Priority:              n.Priority,
		SLADeadline:           n.SLADeadline,
		CounterNoticeDeadline: n.CounterNoticeDeadline,
		IsOverdue:             n.IsOverdue(s.clk),
		MissingElements:       n.MissingElements,
	}, nil
}

// TakeAction executes a direct enforcement command and moves the notice to
// action_taken. Notices under a forwarding regime are rejected; they go
// through the forward path instead.
func (s *Service) TakeAction(ctx context.Context, ticketID string, action ContentAction, operatorID uuid.UUID) error {
	n, err := s.getByTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if n.Jurisdiction.RequiresForwarding() {
		return errors.NewBusinessError("FORWARDING_REQUIRED",
			"jurisdiction operates notice-and-notice: content cannot be actioned directly")
	}
	if err := notice.CanTransition(n.Status, notice.StatusActionTaken); err != nil {
		return err
	}

	var auditAction audit.ActionType
	switch action {
	case ContentActionRemove:
		err = s.content.Remove(ctx, n.ContentRef)
		auditAction = audit.ActionContentRemoved
	case ContentActionDisable:
		err = s.content.Disable(ctx, n.ContentRef)
		auditAction = audit.ActionContentDisabled
	case ContentActionGeoBlock:
		err = s.content.GeoBlock(ctx, n.ContentRef, n.Jurisdiction)
		auditAction = audit.ActionContentGeoBlocked
	default:
		return errors.NewValidationError("INVALID_ACTION", "unknown content action "+string(action))
	}
	if err != nil {
		return errors.NewExternalError("content_store", "enforcement command failed").WithCause(err)
	}

	if err := n.Transition(s.clk, notice.StatusActionTaken); err != nil {
		return err
	}
	if err := s.notices.Update(ctx, n); err != nil {
		return errors.NewInternalError("failed to persist action").WithCause(err)
	}

	s.recordOperatorEvent(ctx, n, auditAction, operatorID, map[string]interface{}{
		"content_ref": n.ContentRef,
		"action":      string(action),
	})
	s.notifyInfringer(ctx, n, "content actioned under takedown notice "+n.TicketID)
	return nil
}

// OpenCounterNoticeWindow fixes the business-day objection deadline and
// notifies the alleged infringer of their appeal rights.
func (s *Service) OpenCounterNoticeWindow(ctx context.Context, ticketID string, operatorID uuid.UUID) error {
	n, err := s.getByTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := notice.CanTransition(n.Status, notice.StatusCounterNoticeWindow); err != nil {
		return err
	}

	deadline := notice.CalculateCounterNoticeDeadline(s.clk, s.cfg.CounterNoticeBusinessDays)
	n.CounterNoticeDeadline = &deadline
	if err := n.Transition(s.clk, notice.StatusCounterNoticeWindow); err != nil {
		return err
	}
	if err := s.notices.Update(ctx, n); err != nil {
		return errors.NewInternalError("failed to persist counter-notice window").WithCause(err)
	}

	s.recordOperatorEvent(ctx, n, audit.ActionInfringerNotified, operatorID, map[string]interface{}{
		"counter_notice_deadline": deadline,
		"business_days":           s.cfg.CounterNoticeBusinessDays,
	})
	if err := s.notifier.NotifyInfringer(ctx, n, "counter-notice window open for "+n.TicketID); err != nil {
		s.logger.Warn("infringer notification failed",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
	}
	return nil
}

// SubmitCounterNotice files a reinstatement appeal against a notice. The
// eligibility guard lives in the domain constructor; an ineligible parent
// status rejects with no mutation.
func (s *Service) SubmitCounterNotice(ctx context.Context, ticketID string, elements notice.StatutoryElements) (*notice.CounterNotice, error) {
	n, err := s.getByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	cn, err := notice.NewCounterNotice(s.clk, n, elements, s.cfg.CounterNoticeBusinessDays)
	if err != nil {
		return nil, err
	}

	if err := s.counterNotices.Save(ctx, cn); err != nil {
		return nil, errors.NewInternalError("failed to save counter-notice").WithCause(err)
	}

	if n.CounterNoticeDeadline == nil {
		n.CounterNoticeDeadline = &cn.Deadline
	}
	if err := n.Transition(s.clk, notice.StatusCounterNoticeReceived); err != nil {
		return nil, err
	}
	if err := s.notices.Update(ctx, n); err != nil {
		return nil, errors.NewInternalError("failed to persist counter-notice transition").WithCause(err)
	}

	s.recordSystemEvent(ctx, n, audit.ActionCounterNoticeReceived, map[string]interface{}{
		"counter_notice_id": cn.ID.String(),
		"deadline":          cn.Deadline,
	})
	s.notifyClaimant(ctx, n, "counter-notice received for "+n.TicketID)
	return cn, nil
}

// AdminResolve records the final disposition of a notice. An upheld
// resolution adds a strike against the content owner; a reversed one
// reinstates the content.
func (s *Service) AdminResolve(ctx context.Context, ticketID string, outcome ResolutionOutcome, operatorID uuid.UUID) error {
	var target notice.Status
	switch outcome {
	case OutcomeUpheld:
		target = notice.StatusResolvedUpheld
	case OutcomeReversed:
		target = notice.StatusResolvedReversed
	default:
		return errors.NewValidationError("INVALID_OUTCOME", "outcome must be upheld or reversed")
	}

	n, err := s.getByTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := n.Transition(s.clk, target); err != nil {
		return err
	}
	if err := s.notices.Update(ctx, n); err != nil {
		return errors.NewInternalError("failed to persist resolution").WithCause(err)
	}

	s.recordOperatorEvent(ctx, n, audit.ActionNoticeResolved, operatorID, map[string]interface{}{
		"outcome": string(outcome),
	})

	switch outcome {
	case OutcomeUpheld:
		s.recordStrike(ctx, n, operatorID)
	case OutcomeReversed:
		s.reinstateContent(ctx, n, operatorID)
	}

	s.notifyClaimant(ctx, n, "notice "+n.TicketID+" resolved "+string(outcome))
	return nil
}

// recordStrike charges an upheld resolution against the content owner.
// Failure to resolve the owner degrades to a logged error rather than
// unwinding the resolution.
func (s *Service) recordStrike(ctx context.Context, n *notice.TakedownNotice, operatorID uuid.UUID) {
	ownerID, err := s.content.Owner(ctx, n.ContentRef)
	if err != nil {
		s.logger.Error("cannot resolve content owner for strike accounting",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}

	record, err := s.infringers.GetByArtistID(ctx, ownerID)
	if err != nil {
		if !stderrors.Is(err, errors.ErrInfringerNotFound) {
			s.logger.Error("failed to load infringer record",
				zap.String("ticket_id", n.TicketID), zap.Error(err))
			return
		}
		record, err = infringer.NewRecord(ownerID)
		if err != nil {
			s.logger.Error("failed to create infringer record",
				zap.String("ticket_id", n.TicketID), zap.Error(err))
			return
		}
	}

	record.AddStrike(s.cfg.StrikeThreshold)
	if err := s.infringers.Save(ctx, record); err != nil {
		s.logger.Error("failed to save infringer record",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}

	s.recordOperatorEvent(ctx, n, audit.ActionStrikeRecorded, operatorID, map[string]interface{}{
		"artist_id":            ownerID.String(),
		"strike_count":         record.StrikeCount,
		"termination_eligible": record.TerminationEligible,
	})
}

func (s *Service) reinstateContent(ctx context.Context, n *notice.TakedownNotice, operatorID uuid.UUID) {
	if err := s.content.Reinstate(ctx, n.ContentRef); err != nil {
		s.logger.Error("content reinstatement failed",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	s.recordOperatorEvent(ctx, n, audit.ActionContentReinstated, operatorID, map[string]interface{}{
		"content_ref": n.ContentRef,
	})
}

// Withdraw closes a notice at the claimant's request. Reachable from any
// non-terminal state.
func (s *Service) Withdraw(ctx context.Context, ticketID string) error {
	n, err := s.getByTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := n.Transition(s.clk, notice.StatusWithdrawn); err != nil {
		return err
	}
	if err := s.notices.Update(ctx, n); err != nil {
		return errors.NewInternalError("failed to persist withdrawal").WithCause(err)
	}
	s.recordSystemEvent(ctx, n, audit.ActionNoticeWithdrawn, nil)
	return nil
}

// Escalate bumps the priority and recomputes the SLA deadline. The recompute
// is itself audited; deadlines are never moved silently.
func (s *Service) Escalate(ctx context.Context, ticketID string, to notice.Priority, operatorID uuid.UUID) error {
	if !to.IsValid() {
		return errors.NewValidationError("INVALID_PRIORITY", "unknown priority "+string(to))
	}
	n, err := s.getByTicket(ctx, ticketID)
	if err != nil {
		return err
	}

	previousDeadline := n.SLADeadline
	previousPriority := n.Priority
	if err := n.Escalate(s.clk, to); err != nil {
		return err
	}
	if err := s.notices.Update(ctx, n); err != nil {
		return errors.NewInternalError("failed to persist escalation").WithCause(err)
	}

	s.recordOperatorEvent(ctx, n, audit.ActionSLAEscalated, operatorID, map[string]interface{}{
		"previous_priority": string(previousPriority),
		"new_priority":      string(to),
		"previous_deadline": previousDeadline,
		"new_deadline":      n.SLADeadline,
	})
	return nil
}

// ListOverdueNotices returns the operator escalation list: non-terminal
// notices whose SLA deadline has lapsed.
func (s *Service) ListOverdueNotices(ctx context.Context) ([]*notice.TakedownNotice, error) {
	candidates, err := s.notices.ListOverdue(ctx, s.clk.Now())
	if err != nil {
		return nil, errors.NewInternalError("failed to list overdue notices").WithCause(err)
	}
	overdue := make([]*notice.TakedownNotice, 0, len(candidates))
	for _, n := range candidates {
		if n.IsOverdue(s.clk) {
			overdue = append(overdue, n)
		}
	}
	return overdue, nil
}

// GetAuditTrail returns the full event history of a ticket.
func (s *Service) GetAuditTrail(ctx context.Context, ticketID string) ([]*audit.Event, error) {
	n, err := s.getByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	events, err := s.auditRepo.ListByNoticeID(ctx, n.ID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load audit trail").WithCause(err)
	}
	return events, nil
}

func (s *Service) getByTicket(ctx context.Context, ticketID string) (*notice.TakedownNotice, error) {
	if !notice.ValidTicketID(ticketID) {
		return nil, errors.ErrNoticeNotFound
	}
	n, err := s.notices.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errors.ErrNoticeNotFound
	}
	return n, nil
}

func (s *Service) recordSystemEvent(ctx context.Context, n *notice.TakedownNotice, action audit.ActionType, details map[string]interface{}) {
	event, err := audit.NewSystemEvent(n.ID, action, details)
	if err != nil {
		s.logger.Error("failed to build audit event",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	if err := s.auditRepo.Save(ctx, event); err != nil {
		s.logger.Error("failed to append audit event",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
	}
}

func (s *Service) recordOperatorEvent(ctx context.Context, n *notice.TakedownNotice, action audit.ActionType, operatorID uuid.UUID, details map[string]interface{}) {
	event, err := audit.NewOperatorEvent(n.ID, action, operatorID, details)
	if err != nil {
		s.logger.Error("failed to build audit event",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	if err := s.auditRepo.Save(ctx, event); err != nil {
		s.logger.Error("failed to append audit event",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
	}
}

func (s *Service) notifyClaimant(ctx context.Context, n *notice.TakedownNotice, subject string) {
	if err := s.notifier.NotifyClaimant(ctx, n, subject); err != nil {
		s.logger.Warn("claimant notification failed",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	s.recordSystemEvent(ctx, n, audit.ActionClaimantNotified, map[string]interface{}{"subject": subject})
}

func (s *Service) notifyInfringer(ctx context.Context, n *notice.TakedownNotice, subject string) {
	if err := s.notifier.NotifyInfringer(ctx, n, subject); err != nil {
		s.logger.Warn("infringer notification failed",
			zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	s.recordSystemEvent(ctx, n, audit.ActionInfringerNotified, map[string]interface{}{"subject": subject})
}
