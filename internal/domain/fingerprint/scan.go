package fingerprint

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// ScanStatus is the outcome class of one scan attempt.
type ScanStatus string

const (
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
	ScanStatusPending   ScanStatus = "pending"
)

// ScanRecord persists one attempt against the external content-matching
// capability. A record is written for every attempt, matched or not, so the
// trail shows the platform actually ran its checks.
type ScanRecord struct {
	ID              uuid.UUID          `json:"id"`
	ContentID       string             `json:"content_id"`
	ContentType     notice.ContentType `json:"content_type"`
	FingerprintHash string             `json:"fingerprint_hash"`
	ScanProvider    string             `json:"scan_provider"`
	MatchFound      bool               `json:"match_found"`
	ConfidenceScore float64            `json:"confidence_score"`
	AutoActionTaken bool               `json:"auto_action_taken"`
	ScanStatus      ScanStatus         `json:"scan_status"`
	CreatedAt       time.Time          `json:"created_at"`
}

// NewScanRecord creates a pending record for a scan attempt.
func NewScanRecord(contentID string, contentType notice.ContentType, provider string) (*ScanRecord, error) {
	if contentID == "" {
		return nil, errors.NewValidationError("MISSING_CONTENT_ID", "content ID is required")
	}
	return &ScanRecord{
		ID:           uuid.New(),
		ContentID:    contentID,
		ContentType:  contentType,
		ScanProvider: provider,
		ScanStatus:   ScanStatusPending,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Complete records a finished scan.
func (r *ScanRecord) Complete(hash string, matchFound bool, confidence float64, autoAction bool) {
	r.FingerprintHash = hash
	r.MatchFound = matchFound
	r.ConfidenceScore = confidence
	r.AutoActionTaken = autoAction
	r.ScanStatus = ScanStatusCompleted
}

// Fail marks the attempt failed; the content routes to manual review.
func (r *ScanRecord) Fail() {
	r.ScanStatus = ScanStatusFailed
}
