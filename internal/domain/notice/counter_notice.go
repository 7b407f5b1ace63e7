package notice

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
)

// CounterNotice is a statutory rebuttal filed by the alleged infringer
// seeking reinstatement. It can only be created while the parent notice is
// in one of the states accepted by CanSubmitCounterNotice.
type CounterNotice struct {
	ID          uuid.UUID         `json:"id"`
	NoticeID    uuid.UUID         `json:"notice_id"`
	TicketID    string            `json:"ticket_id"`
	Elements    StatutoryElements `json:"elements"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Deadline    time.Time         `json:"deadline"`
}

// DefaultCounterNoticeBusinessDays is the statutory objection window.
const DefaultCounterNoticeBusinessDays = 10

// NewCounterNotice validates the parent notice state and builds the
// counter-notice with its business-day deadline.
func NewCounterNotice(clk Clock, parent *TakedownNotice, elements StatutoryElements, businessDays int) (*CounterNotice, error) {
	if clk == nil {
		clk = RealClock{}
	}
	if parent == nil {
		return nil, errors.ErrNoticeNotFound
	}
	if !CanSubmitCounterNotice(parent.Status) {
		return nil, errors.NewTransitionError("COUNTER_NOTICE_REJECTED",
			"counter-notice is not permitted in status "+string(parent.Status))
	}
	if businessDays <= 0 {
		businessDays = DefaultCounterNoticeBusinessDays
	}
	return &CounterNotice{
		ID:          uuid.New(),
		NoticeID:    parent.ID,
		TicketID:    parent.TicketID,
		Elements:    elements,
		SubmittedAt: clk.Now(),
		Deadline:    CalculateCounterNoticeDeadline(clk, businessDays),
	}, nil
}

// CalculateCounterNoticeDeadline advances one calendar day at a time,
// counting only Mon-Fri, until businessDays have accrued. The result never
// lands on a weekend and lies within [businessDays, businessDays+6] calendar
// days of now. Day boundaries are UTC.
func CalculateCounterNoticeDeadline(clk Clock, businessDays int) time.Time {
	deadline := clk.Now().UTC()
	counted := 0
	for counted < businessDays {
		deadline = deadline.AddDate(0, 0, 1)
		switch deadline.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			counted++
		}
	}
	return deadline
}
