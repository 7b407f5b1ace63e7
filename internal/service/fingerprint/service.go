package fingerprint

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/fingerprint"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// DefaultConfidenceThreshold is the match confidence above which content
// is disabled automatically without operator review.
const DefaultConfidenceThreshold = 0.95

// Service runs fingerprint scans for incoming notices. Every attempt is
// persisted; a failed scan routes the notice to manual review instead of
// failing intake.
type Service struct {
	provider  Provider
	scans     ScanRepository
	content   ContentStore
	auditRepo AuditRepository
	reviews   ReviewQueue
	threshold float64
	logger    *zap.Logger
	metrics   Metrics
}

// Metrics receives scan timing and failure counts.
type Metrics interface {
	RecordScan(ctx context.Context, durationMS float64, failed bool)
}

// NewService creates a fingerprint scanning service. A non-positive
// threshold falls back to the default.
func NewService(
	provider Provider,
	scans ScanRepository,
	content ContentStore,
	auditRepo AuditRepository,
	reviews ReviewQueue,
	threshold float64,
	logger *zap.Logger,
) *Service {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:  provider,
		scans:     scans,
		content:   content,
		auditRepo: auditRepo,
		reviews:   reviews,
		threshold: threshold,
		logger:    logger,
	}
}

// ScanNotice fingerprints the content a notice reports. The scan record is
// saved whether the provider succeeds or not; only persistence problems are
// returned as errors.
func (s *Service) ScanNotice(ctx context.Context, n *notice.TakedownNotice) (*fingerprint.ScanRecord, error) {
	if n == nil {
		return nil, errors.NewValidationError("MISSING_NOTICE", "notice is required")
	}

	record, err := fingerprint.NewScanRecord(n.ContentRef, n.ContentType, s.provider.Name())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, scanErr := s.provider.Scan(ctx, n.ContentRef, n.ContentType)
	elapsedMS := float64(time.Since(start)) / float64(time.Millisecond)
	if scanErr != nil {
		s.recordScan(ctx, elapsedMS, true)
		return s.handleFailedScan(ctx, n, record, scanErr)
	}
	s.recordScan(ctx, elapsedMS, false)

	// AutoActionTaken on the record means the content actually went down:
	// the disable runs first and a failure downgrades to manual review.
	// Notice-and-notice jurisdictions never auto-action; the match routes
	// to manual review instead of a unilateral disable.
	autoAction := false
	matched := result.MatchFound && result.Confidence >= s.threshold
	switch {
	case matched && n.Jurisdiction.RequiresForwarding():
		s.enqueueReview(ctx, n, "fingerprint match in a notice-and-notice jurisdiction")
	case matched:
		if err := s.content.Disable(ctx, n.ContentRef); err != nil {
			s.logger.Error("auto-disable failed, routing to manual review",
				zap.String("ticket_id", n.TicketID),
				zap.Error(err),
			)
			s.enqueueReview(ctx, n, "automatic content disable failed")
		} else {
			autoAction = true
		}
	}

	record.Complete(result.FingerprintHash, result.MatchFound, result.Confidence, autoAction)

	if err := s.scans.Save(ctx, record); err != nil {
		return nil, errors.NewInternalError("failed to save scan record").WithCause(err)
	}

	s.recordAudit(ctx, n, audit.ActionFingerprintScan, map[string]interface{}{
		"scan_id":     record.ID.String(),
		"provider":    s.provider.Name(),
		"match_found": result.MatchFound,
		"confidence":  result.Confidence,
		"auto_action": autoAction,
	})

	if autoAction {
		s.recordAudit(ctx, n, audit.ActionContentDisabled, map[string]interface{}{
			"content_ref": n.ContentRef,
			"trigger":     "fingerprint_match",
			"confidence":  result.Confidence,
		})
	}

	return record, nil
}

func (s *Service) handleFailedScan(ctx context.Context, n *notice.TakedownNotice, record *fingerprint.ScanRecord, scanErr error) (*fingerprint.ScanRecord, error) {
	record.Fail()

	if err := s.scans.Save(ctx, record); err != nil {
		return nil, errors.NewInternalError("failed to save scan record").WithCause(err)
	}

	s.logger.Warn("fingerprint scan failed",
		zap.String("ticket_id", n.TicketID),
		zap.String("provider", s.provider.Name()),
		zap.Error(scanErr),
	)

	s.recordAudit(ctx, n, audit.ActionFingerprintScan, map[string]interface{}{
		"scan_id":  record.ID.String(),
		"provider": s.provider.Name(),
		"status":   string(fingerprint.ScanStatusFailed),
		"error":    scanErr.Error(),
	})

	s.enqueueReview(ctx, n, "fingerprint scan failed")
	return record, nil
}

func (s *Service) recordAudit(ctx context.Context, n *notice.TakedownNotice, action audit.ActionType, details map[string]interface{}) {
	event, err := audit.NewSystemEvent(n.ID, action, details)
	if err != nil {
		s.logger.Error("failed to build audit event", zap.String("ticket_id", n.TicketID), zap.Error(err))
		return
	}
	if err := s.auditRepo.Save(ctx, event); err != nil {
		s.logger.Error("failed to save audit event", zap.String("ticket_id", n.TicketID), zap.Error(err))
	}
}

// WithMetrics attaches a metrics sink for scan instrumentation.
func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) recordScan(ctx context.Context, durationMS float64, failed bool) {
	if s.metrics != nil {
		s.metrics.RecordScan(ctx, durationMS, failed)
	}
}

func (s *Service) enqueueReview(ctx context.Context, n *notice.TakedownNotice, reason string) {
	if err := s.reviews.EnqueueManualReview(ctx, n.ID, reason); err != nil {
		s.logger.Error("failed to enqueue manual review",
			zap.String("ticket_id", n.TicketID),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}
