package assessment

import "context"

// Assessor scores an incoming notice against the external risk engine.
type Assessor interface {
	Assess(ctx context.Context, req Request) (*Result, error)
}
