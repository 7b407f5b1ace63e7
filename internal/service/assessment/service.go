package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
)

const defaultTimeout = 2 * time.Second

// maxResponseBytes caps how much of the risk engine's response we read.
const maxResponseBytes = 1 << 20

// HTTPAssessor calls an external risk engine over HTTP.
type HTTPAssessor struct {
	client   *http.Client
	endpoint string
}

// NewHTTPAssessor creates an assessor backed by the risk engine at endpoint.
// A non-positive timeout falls back to the default.
func NewHTTPAssessor(endpoint string, timeout time.Duration) *HTTPAssessor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPAssessor{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

// Assess posts the notice facts to the risk engine and decodes its verdict.
func (a *HTTPAssessor) Assess(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode assessment request").WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternalError("failed to build assessment request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, errors.NewExternalError("risk_engine", "assessment request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalError("risk_engine",
			fmt.Sprintf("assessment returned status %d", resp.StatusCode))
	}

	var result Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, errors.NewExternalError("risk_engine", "unparseable assessment response").WithCause(err)
	}

	if !result.RiskLevel.isKnown() || !result.SuggestedPriority.IsValid() {
		return nil, errors.NewExternalError("risk_engine", "assessment response missing required fields")
	}

	return &result, nil
}

func (r RiskLevel) isKnown() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical:
		return true
	}
	return false
}

// Metrics receives a count of assessments that degraded to defaults.
type Metrics interface {
	RecordFailOpen(ctx context.Context)
}

// FailOpenAssessor wraps another Assessor and converts every failure
// into the medium-risk default so intake never blocks on the risk
// engine being down.
type FailOpenAssessor struct {
	inner   Assessor
	logger  *zap.Logger
	metrics Metrics
}

// NewFailOpenAssessor wraps inner with fail-open semantics.
func NewFailOpenAssessor(inner Assessor, logger *zap.Logger) *FailOpenAssessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FailOpenAssessor{inner: inner, logger: logger}
}

// WithMetrics attaches a metrics sink for fail-open events.
func (a *FailOpenAssessor) WithMetrics(m Metrics) *FailOpenAssessor {
	a.metrics = m
	return a
}

// Assess never returns an error. Any failure from the wrapped
// assessor is logged and replaced with DefaultResult.
func (a *FailOpenAssessor) Assess(ctx context.Context, req Request) (*Result, error) {
	result, err := a.inner.Assess(ctx, req)
	if err != nil {
		a.logger.Warn("risk assessment unavailable, proceeding with defaults",
			zap.String("content_ref", req.ContentRef),
			zap.Error(err),
		)
		a.recordFailOpen(ctx)
		return DefaultResult(), nil
	}
	if result == nil {
		a.logger.Warn("risk assessment returned empty result, proceeding with defaults",
			zap.String("content_ref", req.ContentRef),
		)
		a.recordFailOpen(ctx)
		return DefaultResult(), nil
	}
	return result, nil
}

func (a *FailOpenAssessor) recordFailOpen(ctx context.Context) {
	if a.metrics != nil {
		a.metrics.RecordFailOpen(ctx)
	}
}

var _ Assessor = (*HTTPAssessor)(nil)
var _ Assessor = (*FailOpenAssessor)(nil)
