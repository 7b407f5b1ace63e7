package notice

import "time"

// slaHours maps jurisdiction x priority to the number of calendar hours the
// platform has to act. The EU row is the fastest tier at every priority
// (expedited regional law); WW is the catch-all, slowest tier.
var slaHours = map[Jurisdiction]map[Priority]int{
	JurisdictionUS: {PriorityUrgent: 24, PriorityHigh: 48, PriorityNormal: 72, PriorityLow: 168},
	JurisdictionEU: {PriorityUrgent: 12, PriorityHigh: 24, PriorityNormal: 48, PriorityLow: 96},
	JurisdictionUK: {PriorityUrgent: 24, PriorityHigh: 48, PriorityNormal: 72, PriorityLow: 168},
	JurisdictionCA: {PriorityUrgent: 48, PriorityHigh: 72, PriorityNormal: 96, PriorityLow: 168},
	JurisdictionAU: {PriorityUrgent: 48, PriorityHigh: 72, PriorityNormal: 96, PriorityLow: 168},
	JurisdictionWW: {PriorityUrgent: 72, PriorityHigh: 96, PriorityNormal: 120, PriorityLow: 240},
}

// defaultSLAHours applies when either dimension is unknown.
const defaultSLAHours = 72

// CalculateSLADeadline returns now plus the matrix hours for the given
// jurisdiction and priority. Unknown pairs fall back to 72 hours. Pure.
func CalculateSLADeadline(clk Clock, jurisdiction Jurisdiction, priority Priority) time.Time {
	hours := defaultSLAHours
	if byPriority, ok := slaHours[jurisdiction]; ok {
		if h, ok := byPriority[priority]; ok {
			hours = h
		}
	}
	return clk.Now().Add(time.Duration(hours) * time.Hour)
}

// DeterminePriority resolves the final priority from the automated
// suggestion and the claimant's trust level. Premium and elevated trusted
// flaggers override the suggestion outright; anything else passes it
// through unchanged.
func DeterminePriority(suggested Priority, trustLevel TrustLevel) Priority {
	switch trustLevel {
	case TrustLevelPremium:
		return PriorityUrgent
	case TrustLevelElevated:
		return PriorityHigh
	}
	return suggested
}

// IsOverdueSLA reports whether a deadline has lapsed for a live notice.
// A zero deadline is never overdue; terminal statuses are never overdue no
// matter how far past the deadline. Computed at read time, never cached.
func IsOverdueSLA(clk Clock, deadline time.Time, status Status) bool {
	if deadline.IsZero() {
		return false
	}
	if status.IsTerminal() {
		return false
	}
	return deadline.Before(clk.Now())
}
