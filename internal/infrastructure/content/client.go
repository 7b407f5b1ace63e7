package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/errors"
	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

const (
	defaultTimeout   = 5 * time.Second
	maxResponseBytes = 1 << 20
)

// Client talks to the platform's content service. Commands are idempotent
// on the remote side, so retried enforcement is safe.
type Client struct {
	client   *http.Client
	endpoint string
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

type commandRequest struct {
	ContentRef   string `json:"content_ref"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

func (c *Client) Remove(ctx context.Context, contentRef string) error {
	return c.command(ctx, "remove", commandRequest{ContentRef: contentRef})
}

func (c *Client) Disable(ctx context.Context, contentRef string) error {
	return c.command(ctx, "disable", commandRequest{ContentRef: contentRef})
}

func (c *Client) GeoBlock(ctx context.Context, contentRef string, jurisdiction notice.Jurisdiction) error {
	return c.command(ctx, "geo-block", commandRequest{
		ContentRef:   contentRef,
		Jurisdiction: string(jurisdiction),
	})
}

func (c *Client) Reinstate(ctx context.Context, contentRef string) error {
	return c.command(ctx, "reinstate", commandRequest{ContentRef: contentRef})
}

// Owner resolves the account that uploaded the content, for strike
// accounting after an upheld resolution.
func (c *Client) Owner(ctx context.Context, contentRef string) (uuid.UUID, error) {
	body, err := json.Marshal(commandRequest{ContentRef: contentRef})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal owner lookup: %w", err)
	}

	resp, err := c.post(ctx, c.endpoint+"/owner", body)
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return uuid.Nil, errors.NewExternalError("content_store",
			fmt.Sprintf("owner lookup returned status %d", resp.StatusCode))
	}

	var out struct {
		OwnerID uuid.UUID `json:"owner_id"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return uuid.Nil, errors.NewExternalError("content_store", "unparseable owner response").WithCause(err)
	}
	if out.OwnerID == uuid.Nil {
		return uuid.Nil, errors.NewExternalError("content_store", "owner lookup returned no owner")
	}
	return out.OwnerID, nil
}

func (c *Client) command(ctx context.Context, action string, req commandRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal %s command: %w", action, err)
	}

	resp, err := c.post(ctx, c.endpoint+"/"+action, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.NewExternalError("content_store",
			fmt.Sprintf("%s command returned status %d", action, resp.StatusCode))
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build content store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalError("content_store", "request failed").WithCause(err)
	}
	return resp, nil
}
