// Package profile fetches user profiles from a remote JSON API.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/samplecodes/testkata/internal/apperr"
	"github.com/samplecodes/testkata/internal/config"
	"github.com/samplecodes/testkata/pkg/logger"
)

// DefaultTimeout bounds FetchUserProfile when no timeout is configured.
const DefaultTimeout = time.Second

// Client calls the remote profile API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg config.APIConfig, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
		log:        logger.OrNop(log),
	}
}

// FetchData performs GET <baseURL>/<endpoint> and decodes the JSON object body.
// Non-2xx responses fail with an UpstreamError naming the status code.
func (c *Client) FetchData(ctx context.Context, endpoint string) (map[string]interface{}, error) {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "api request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Newf(apperr.KindUpstream, "api error: %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "invalid api response", err)
	}
	return data, nil
}

// FetchUserProfile fetches users/<userID> within the configured timeout.
func (c *Client) FetchUserProfile(ctx context.Context, userID string) (map[string]interface{}, error) {
	c.log.Info("fetching user profile", zap.String("user_id", userID))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.FetchData(ctx, "users/"+url.PathEscape(userID))
	if err != nil {
		c.log.Error("user profile fetch failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	c.log.Info("user profile fetched", zap.String("user_id", userID))
	return data, nil
}
