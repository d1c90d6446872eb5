package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"preload-service/internal/preload"

	"github.com/google/uuid"
)

// Client downloads object payloads from the external blob store over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Fetch(ctx context.Context, id uuid.UUID) ([]byte, error) {
	url := fmt.Sprintf("%s/objects/%s/download", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("blob fetch %s: %w", id, preload.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob fetch %s: unexpected status %d", id, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
