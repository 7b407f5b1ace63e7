package assessment

import (
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

// RiskLevel classifies the claimed infringement for triage purposes.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// Request carries the notice facts the upstream risk engine scores. There
// is no ticket correlation key: assessment runs before a ticket exists, so
// the content reference identifies the submission.
type Request struct {
	ContentRef   string              `json:"content_ref"`
	ContentType  notice.ContentType  `json:"content_type"`
	Jurisdiction notice.Jurisdiction `json:"jurisdiction"`
	ClaimantName string              `json:"claimant_name"`
	WorkTitle    string              `json:"work_title"`
	TrustLevel   notice.TrustLevel   `json:"trust_level"`
}

// Result is the risk engine's verdict. Callers must treat it as
// advisory: intake never blocks on it.
type Result struct {
	IsValid           bool            `json:"is_valid"`
	RiskLevel         RiskLevel       `json:"risk_level"`
	SuggestedPriority notice.Priority `json:"suggested_priority"`
	Notes             string          `json:"notes"`
}

// DefaultResult is returned whenever the risk engine cannot be
// reached or its response cannot be parsed. Intake proceeds at
// medium risk rather than rejecting the notice.
func DefaultResult() *Result {
	return &Result{
		IsValid:           true,
		RiskLevel:         RiskLevelMedium,
		SuggestedPriority: notice.PriorityNormal,
		Notes:             "Automated assessment unavailable",
	}
}
