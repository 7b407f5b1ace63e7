package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// LogNotifier is the default dispatcher. Delivery is fire-and-forget from
// the lifecycle's point of view; this implementation records the outbound
// message and succeeds, leaving transport integration to deployments that
// need it.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyClaimant(ctx context.Context, tn *notice.TakedownNotice, subject string) error {
	n.logger.Info("claimant notification dispatched",
		zap.String("ticket_id", tn.TicketID),
		zap.String("claimant_email", tn.Claimant.ClaimantEmail),
		zap.String("subject", subject))
	return nil
}

func (n *LogNotifier) NotifyInfringer(ctx context.Context, tn *notice.TakedownNotice, subject string) error {
	n.logger.Info("infringer notification dispatched",
		zap.String("ticket_id", tn.TicketID),
		zap.String("content_ref", tn.ContentRef),
		zap.String("subject", subject))
	return nil
}

func (n *LogNotifier) ForwardNotice(ctx context.Context, tn *notice.TakedownNotice) error {
	n.logger.Info("notice forwarded to alleged infringer",
		zap.String("ticket_id", tn.TicketID),
		zap.String("jurisdiction", string(tn.Jurisdiction)),
		zap.String("framework", string(tn.Framework)))
	return nil
}
