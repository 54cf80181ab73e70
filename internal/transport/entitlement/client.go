// Package entitlement calls the content-access service. The lookup is a soft
// dependency: any failure degrades to "accessible" so the pipeline never
// blocks on it.
package entitlement

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client checks document-level access for a user token.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the entitlement service settings.
type Config struct {
	BaseURL    string
	TimeoutSec int
	Logger     *zap.Logger
}

// New creates an entitlement client. An empty base URL disables the lookup;
// IsAccessible then always reports true.
func New(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// IsAccessible reports whether the user may read the document. Unreachable
// service, non-200 response, or malformed body all default to true.
func (c *Client) IsAccessible(ctx context.Context, documentID, userToken string) bool {
	if c.baseURL == "" || documentID == "" {
		return true
	}

	u := fmt.Sprintf("%s/access/%s?token=%s", c.baseURL, url.PathEscape(documentID), url.QueryEscape(userToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return true
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("entitlement lookup failed, defaulting to accessible",
			zap.String("document_id", documentID), zap.Error(err))
		return true
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("entitlement lookup non-200, defaulting to accessible",
			zap.String("document_id", documentID), zap.Int("status", resp.StatusCode))
		return true
	}

	var body struct {
		Accessible bool `json:"accessible"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return true
	}
	return body.Accessible
}
