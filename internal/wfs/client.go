// Package wfs is the transport layer for the WOUDC WFS 1.1.0 service. It
// issues GetFeature requests and decodes one GeoJSON page per call; the
// query engine owns filtering, pagination, and aggregation.
package wfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client handles communication with a WOUDC WFS endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new WFS client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger for the client.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// GetFeature requests one page of features. A legitimately empty page comes
// back as a Page with no features; a payload that cannot be parsed at all
// is reported as ErrNoResults per the service convention. Network and
// protocol failures wrap ErrTransport.
func (c *Client) GetFeature(ctx context.Context, params GetFeatureParams) (*Page, error) {
	requestURL, err := c.buildRequestURL(&params)
	if err != nil {
		return nil, fmt.Errorf("failed to build GetFeature URL: %w", err)
	}

	c.logger.DebugContext(ctx, "executing GetFeature",
		slog.String("typename", params.TypeName),
		slog.Int("startindex", params.StartIndex),
		slog.Int("maxfeatures", params.MaxFeatures),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "woudc-client/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "GetFeature request failed",
			slog.String("error", err.Error()),
			slog.String("url", requestURL),
		)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "GetFeature returned non-200 status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)),
		)
		return nil, fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, string(body))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	// A blank payload is the service's way of saying "nothing beyond this
	// offset".
	if len(strings.TrimSpace(string(payload))) == 0 {
		c.logger.DebugContext(ctx, "empty GetFeature payload")
		return &Page{}, nil
	}

	var envelope pageEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.logger.InfoContext(ctx, "GetFeature payload is not valid GeoJSON",
			slog.String("typename", params.TypeName),
		)
		return nil, fmt.Errorf("%w: %v", ErrNoResults, err)
	}

	c.logger.DebugContext(ctx, "GetFeature completed",
		slog.Int("feature_count", len(envelope.Features)),
	)

	return &Page{
		Features:      envelope.Features,
		NumberMatched: envelope.matched(),
	}, nil
}

// buildRequestURL constructs the full GetFeature URL with KVP parameters.
func (c *Client) buildRequestURL(params *GetFeatureParams) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	base.RawQuery = params.ToURLValues().Encode()
	return base.String(), nil
}
