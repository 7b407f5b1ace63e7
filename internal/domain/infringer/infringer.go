package infringer

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
)

// DefaultStrikeThreshold is the policy default: three upheld notices make an
// account termination-eligible. Enforcing this policy (not just documenting
// it) is a safe-harbor condition.
const DefaultStrikeThreshold = 3

// Record tracks upheld infringement notices per content owner.
type Record struct {
	ArtistID            uuid.UUID `json:"artist_id"`
	StrikeCount         int       `json:"strike_count"`
	TerminationEligible bool      `json:"termination_eligible"`
	LastStrikeAt        time.Time `json:"last_strike_at"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewRecord starts strike accounting for an artist.
func NewRecord(artistID uuid.UUID) (*Record, error) {
	if artistID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_ARTIST_ID", "artist ID is required")
	}
	now := time.Now().UTC()
	return &Record{
		ArtistID:  artistID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddStrike increments the counter and re-evaluates termination eligibility
// against the threshold. Called only on resolved_upheld.
func (r *Record) AddStrike(threshold int) {
	if threshold <= 0 {
		threshold = DefaultStrikeThreshold
	}
	now := time.Now().UTC()
	r.StrikeCount++
	r.LastStrikeAt = now
	r.UpdatedAt = now
	if r.StrikeCount >= threshold {
		r.TerminationEligible = true
	}
}
