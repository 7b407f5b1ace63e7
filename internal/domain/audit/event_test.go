package audit_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/audit"
)

func TestNewSystemEvent(t *testing.T) {
	noticeID := uuid.New()

	ev, err := audit.NewSystemEvent(noticeID, audit.ActionFingerprintScan,
		map[string]interface{}{"provider": "acme-match", "confidence": 0.97})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, noticeID, ev.NoticeID)
	assert.True(t, ev.IsAutomated)
	assert.Nil(t, ev.PerformedBy)
	assert.NotZero(t, ev.Timestamp)
	assert.Equal(t, "acme-match", ev.Details["provider"])
}

func TestNewOperatorEvent(t *testing.T) {
	noticeID := uuid.New()
	operator := uuid.New()

	ev, err := audit.NewOperatorEvent(noticeID, audit.ActionManualNote, operator, nil)
	require.NoError(t, err)

	assert.False(t, ev.IsAutomated)
	require.NotNil(t, ev.PerformedBy)
	assert.Equal(t, operator, *ev.PerformedBy)
	assert.NotNil(t, ev.Details)

	_, err = audit.NewOperatorEvent(noticeID, audit.ActionManualNote, uuid.Nil, nil)
	assert.Error(t, err, "operator events require an operator")
}

func TestNewEvent_Validation(t *testing.T) {
	tests := []struct {
		name     string
		noticeID uuid.UUID
		action   audit.ActionType
		wantErr  bool
	}{
		{"valid", uuid.New(), audit.ActionNoticeReceived, false},
		{"nil notice", uuid.Nil, audit.ActionNoticeReceived, true},
		{"unknown action", uuid.New(), audit.ActionType("content_vaporized"), true},
		{"empty action", uuid.New(), audit.ActionType(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := audit.NewSystemEvent(tt.noticeID, tt.action, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestActionTypes_TaxonomyBreadth(t *testing.T) {
	types := audit.ActionTypes()
	assert.GreaterOrEqual(t, len(types), 16, "the action taxonomy must cover at least 16 values")

	seen := make(map[audit.ActionType]bool)
	for _, at := range types {
		assert.False(t, seen[at], "duplicate action type %s", at)
		seen[at] = true
	}
}
