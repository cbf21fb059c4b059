package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
)

// DefaultTimeout is the default HTTP request timeout for platform APIs.
const DefaultTimeout = 15 * time.Second

// Client sends throttled JSON requests to one platform.
type Client struct {
	name      string
	http      *http.Client
	throttle  *Throttle
	userAgent string
}

// NewClient creates a client. name prefixes error messages.
func NewClient(name string, throttle *Throttle, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if throttle == nil {
		throttle = NewThrottle(ThrottleConfig{})
	}
	return &Client{
		name:      name,
		http:      &http.Client{Timeout: timeout},
		throttle:  throttle,
		userAgent: domain.DefaultUserAgent,
	}
}

// GetJSON GETs rawURL and decodes the JSON body into out.
// Non-200 statuses wrap domain.ErrProvider; bodies that do not decode wrap
// domain.ErrMalformedProviderResponse.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: send request: %w", domain.ErrProvider, c.name, err)
	}
	defer resp.Body.Close()

	c.throttle.Observe(resp)

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return fmt.Errorf("%w: %s error (status %d): failed to read response", domain.ErrProvider, c.name, resp.StatusCode)
		}
		return fmt.Errorf("%w: %s error (status %d): %s", domain.ErrProvider, c.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w: %w", c.name, domain.ErrMalformedProviderResponse, err)
	}
	return nil
}
