package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogReviewQueue is the default manual-review sink. It records the request
// loudly; operators pick items up from the logs or from the overdue list.
type LogReviewQueue struct {
	logger *zap.Logger
}

func NewLogReviewQueue(logger *zap.Logger) *LogReviewQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReviewQueue{logger: logger}
}

func (q *LogReviewQueue) EnqueueManualReview(ctx context.Context, noticeID uuid.UUID, reason string) error {
	q.logger.Warn("notice queued for manual review",
		zap.String("notice_id", noticeID.String()),
		zap.String("reason", reason))
	return nil
}
