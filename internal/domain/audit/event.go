package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
)

// Event is one immutable entry in the compliance audit trail. Events are
// created, inserted and read; no update or delete surface exists anywhere,
// preserving evidentiary integrity.
type Event struct {
	ID       uuid.UUID `json:"id"`
	NoticeID uuid.UUID `json:"notice_id"`

	ActionType ActionType `json:"action_type"`

	// IsAutomated distinguishes system actions from operator actions.
	// Automated events carry no performer.
	IsAutomated bool       `json:"is_automated"`
	PerformedBy *uuid.UUID `json:"performed_by,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	Details map[string]interface{} `json:"details,omitempty"`
}

// ActionType classifies what happened. The operational detail the lifecycle
// state machine deliberately leaves out (disable vs geo-block vs forward)
// lives here.
type ActionType string

const (
	ActionNoticeReceived        ActionType = "notice_received"
	ActionStatutoryValidation   ActionType = "statutory_validation"
	ActionFingerprintScan       ActionType = "fingerprint_scan"
	ActionAutomatedTriage       ActionType = "automated_triage"
	ActionContentRemoved        ActionType = "content_removed"
	ActionContentDisabled       ActionType = "content_disabled"
	ActionContentGeoBlocked     ActionType = "content_geo_blocked"
	ActionClaimantNotified      ActionType = "claimant_notified"
	ActionInfringerNotified     ActionType = "infringer_notified"
	ActionNoticeForwarded       ActionType = "notice_forwarded"
	ActionCounterNoticeReceived ActionType = "counter_notice_received"
	ActionContentReinstated     ActionType = "content_reinstated"
	ActionNoticeResolved        ActionType = "notice_resolved"
	ActionAppealFiled           ActionType = "appeal_filed"
	ActionAppealResolved        ActionType = "appeal_resolved"
	ActionManualNote            ActionType = "manual_note"
	ActionNoAction              ActionType = "no_action"
	ActionStrikeRecorded        ActionType = "strike_recorded"
	ActionSLAEscalated          ActionType = "sla_escalated"
	ActionNoticeWithdrawn       ActionType = "notice_withdrawn"
)

var validActionTypes = map[ActionType]bool{
	ActionNoticeReceived:        true,
	ActionStatutoryValidation:   true,
	ActionFingerprintScan:       true,
	ActionAutomatedTriage:       true,
	ActionContentRemoved:        true,
	ActionContentDisabled:       true,
	ActionContentGeoBlocked:     true,
	ActionClaimantNotified:      true,
	ActionInfringerNotified:     true,
	ActionNoticeForwarded:       true,
	ActionCounterNoticeReceived: true,
	ActionContentReinstated:     true,
	ActionNoticeResolved:        true,
	ActionAppealFiled:           true,
	ActionAppealResolved:        true,
	ActionManualNote:            true,
	ActionNoAction:              true,
	ActionStrikeRecorded:        true,
	ActionSLAEscalated:          true,
	ActionNoticeWithdrawn:       true,
}

// ActionTypes returns the full taxonomy.
func ActionTypes() []ActionType {
	types := make([]ActionType, 0, len(validActionTypes))
	for t := range validActionTypes {
		types = append(types, t)
	}
	return types
}

// NewSystemEvent creates an automated event with no performer.
func NewSystemEvent(noticeID uuid.UUID, action ActionType, details map[string]interface{}) (*Event, error) {
	return newEvent(noticeID, action, true, nil, details)
}

// NewOperatorEvent creates a human-performed event attributed to operatorID.
func NewOperatorEvent(noticeID uuid.UUID, action ActionType, operatorID uuid.UUID, details map[string]interface{}) (*Event, error) {
	if operatorID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_OPERATOR", "operator ID is required for a manual event")
	}
	return newEvent(noticeID, action, false, &operatorID, details)
}

func newEvent(noticeID uuid.UUID, action ActionType, automated bool, performedBy *uuid.UUID, details map[string]interface{}) (*Event, error) {
	if noticeID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_NOTICE_ID", "notice ID is required")
	}
	if !validActionTypes[action] {
		return nil, errors.NewValidationError("INVALID_ACTION_TYPE",
			fmt.Sprintf("unknown audit action type %q", action))
	}
	if details == nil {
		details = make(map[string]interface{})
	}
	return &Event{
		ID:          uuid.New(),
		NoticeID:    noticeID,
		ActionType:  action,
		IsAutomated: automated,
		PerformedBy: performedBy,
		Timestamp:   time.Now().UTC(),
		Details:     details,
	}, nil
}
