package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
	fingerprintsvc "github.com/davidleathers/takedown-compliance-engine/internal/service/fingerprint"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

// HTTPProvider wraps an external content-matching engine behind its HTTP
// API. Scan failures are surfaced to the caller, which routes the notice to
// manual review rather than guessing a verdict.
type HTTPProvider struct {
	client   *http.Client
	endpoint string
	name     string
}

func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPProvider{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		name:     name,
	}
}

func (p *HTTPProvider) Name() string {
	return p.name
}

func (p *HTTPProvider) Scan(ctx context.Context, contentRef string, contentType notice.ContentType) (*fingerprintsvc.ProviderResult, error) {
	body, err := json.Marshal(map[string]string{
		"content_ref":  contentRef,
		"content_type": string(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalError(p.name, "scan request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalError(p.name,
			fmt.Sprintf("scan returned status %d", resp.StatusCode))
	}

	var out struct {
		FingerprintHash string  `json:"fingerprint_hash"`
		MatchFound      bool    `json:"match_found"`
		Confidence      float64 `json:"confidence"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, errors.NewExternalError(p.name, "unparseable scan response").WithCause(err)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, errors.NewExternalError(p.name,
			fmt.Sprintf("confidence %.4f out of range", out.Confidence))
	}

	return &fingerprintsvc.ProviderResult{
		FingerprintHash: out.FingerprintHash,
		MatchFound:      out.MatchFound,
		Confidence:      out.Confidence,
	}, nil
}
