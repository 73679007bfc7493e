// Package source fetches the published order sheet and the pricing
// documents over HTTP.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"order_tracker/internal/pricing"
)

var ErrUnexpectedStatus = errors.New("unexpected upstream status")

type Client struct {
	HTTPClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchText GETs url and returns the body. With noCache the request asks
// intermediaries not to serve a cached copy.
func (c *Client) FetchText(ctx context.Context, url string, noCache bool) (string, error) {
	body, err := c.get(ctx, url, noCache)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON GETs url and decodes the body into dest.
func (c *Client) FetchJSON(ctx context.Context, url string, dest interface{}) error {
	body, err := c.get(ctx, url, false)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, noCache bool) ([]byte, error) {
	// Create HTTP request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Bypass intermediate caches on forced refresh
	if noCache {
		req.Header.Set("Cache-Control", "no-cache, no-store")
		req.Header.Set("Pragma", "no-cache")
	}

	// Send request
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Read response
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, url, resp.StatusCode)
	}
	return body, nil
}

// Sheet is the published CSV export of the order sheet.
type Sheet struct {
	client *Client
	url    string
}

func NewSheet(client *Client, url string) *Sheet {
	return &Sheet{client: client, url: url}
}

func (s *Sheet) FetchCSV(ctx context.Context, force bool) (string, error) {
	text, err := s.client.FetchText(ctx, s.url, force)
	if err != nil {
		return "", fmt.Errorf("failed to load CSV: %w", err)
	}
	return text, nil
}

// Pricing loads the prices document and the optional promo document.
type Pricing struct {
	client    *Client
	pricesURL string
	promoURL  string
}

func NewPricing(client *Client, pricesURL, promoURL string) *Pricing {
	return &Pricing{client: client, pricesURL: pricesURL, promoURL: promoURL}
}

func (p *Pricing) LoadConfig(ctx context.Context) (pricing.Prices, pricing.Promo, error) {
	var prices pricing.Prices
	if err := p.client.FetchJSON(ctx, p.pricesURL, &prices); err != nil {
		return pricing.Prices{}, pricing.Promo{}, fmt.Errorf("failed to load prices: %w", err)
	}

	var promo pricing.Promo
	if strings.TrimSpace(p.promoURL) != "" {
		if err := p.client.FetchJSON(ctx, p.promoURL, &promo); err != nil {
			return pricing.Prices{}, pricing.Promo{}, fmt.Errorf("failed to load promo: %w", err)
		}
	}
	return prices, promo, nil
}
