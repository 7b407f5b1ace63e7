package notice

import (
	"fmt"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
)

// Status is the notice lifecycle state. Finer-grained operational actions
// (disable, geo-block, forward) live in the audit trail, not here.
type Status string

const (
	StatusSubmitted             Status = "submitted"
	StatusTriage                Status = "triage"
	StatusActionTaken           Status = "action_taken"
	StatusNotified              Status = "notified"
	StatusCounterNoticeWindow   Status = "counter_notice_window"
	StatusCounterNoticeReceived Status = "counter_notice_received"
	StatusResolvedUpheld        Status = "resolved_upheld"
	StatusResolvedReversed      Status = "resolved_reversed"
	StatusWithdrawn             Status = "withdrawn"
)

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusResolvedUpheld, StatusResolvedReversed, StatusWithdrawn:
		return true
	}
	return false
}

// IsValid reports whether s is one of the defined lifecycle states.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// transitions is the single source of truth for the lifecycle graph.
// Every guard in this package and in the service layer consults it.
// Resolution is reachable from any non-terminal state; withdrawal likewise.
var transitions = map[Status]map[Status]bool{
	StatusSubmitted: {
		StatusTriage:           true,
		StatusResolvedUpheld:   true,
		StatusResolvedReversed: true,
		StatusWithdrawn:        true,
	},
	StatusTriage: {
		StatusActionTaken:      true,
		StatusNotified:         true,
		StatusResolvedUpheld:   true,
		StatusResolvedReversed: true,
		StatusWithdrawn:        true,
	},
	StatusActionTaken: {
		StatusNotified:              true,
		StatusCounterNoticeWindow:   true,
		StatusCounterNoticeReceived: true,
		StatusResolvedUpheld:        true,
		StatusResolvedReversed:      true,
		StatusWithdrawn:             true,
	},
	StatusNotified: {
		StatusCounterNoticeWindow:   true,
		StatusCounterNoticeReceived: true,
		StatusResolvedUpheld:        true,
		StatusResolvedReversed:      true,
		StatusWithdrawn:             true,
	},
	StatusCounterNoticeWindow: {
		StatusCounterNoticeReceived: true,
		StatusResolvedUpheld:        true,
		StatusResolvedReversed:      true,
		StatusWithdrawn:             true,
	},
	StatusCounterNoticeReceived: {
		StatusResolvedUpheld:   true,
		StatusResolvedReversed: true,
		StatusWithdrawn:        true,
	},
	StatusResolvedUpheld:   {},
	StatusResolvedReversed: {},
	StatusWithdrawn:        {},
}

// CanTransition checks the lifecycle table without mutating anything.
func CanTransition(from, to Status) error {
	allowed, ok := transitions[from]
	if !ok {
		return errors.NewTransitionError("UNKNOWN_STATUS",
			fmt.Sprintf("unknown notice status %q", from))
	}
	if from.IsTerminal() {
		return errors.ErrTerminalNotice
	}
	if !allowed[to] {
		return errors.NewTransitionError("TRANSITION_REJECTED",
			fmt.Sprintf("transition %s -> %s is not permitted", from, to))
	}
	return nil
}

// counterNoticeStates is the set of states in which an appeal is meaningful:
// content has been acted on and the matter is not yet closed.
var counterNoticeStates = map[Status]bool{
	StatusActionTaken:         true,
	StatusNotified:            true,
	StatusCounterNoticeWindow: true,
}

// CanSubmitCounterNotice reports whether a counter-notice may be filed
// against a notice in the given status.
func CanSubmitCounterNotice(s Status) bool {
	return counterNoticeStates[s]
}

// CanResolve reports whether a notice in the given status may still be
// resolved. Guards against double-resolution.
func CanResolve(s Status) bool {
	return s.IsValid() && !s.IsTerminal()
}

// AllStatuses returns every defined lifecycle status, used by tests and
// reporting.
func AllStatuses() []Status {
	return []Status{
		StatusSubmitted,
		StatusTriage,
		StatusActionTaken,
		StatusNotified,
		StatusCounterNoticeWindow,
		StatusCounterNoticeReceived,
		StatusResolvedUpheld,
		StatusResolvedReversed,
		StatusWithdrawn,
	}
}
