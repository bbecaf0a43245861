// Client for the external checkout provider. Our whole obligation is to
// request a checkout or portal session and hand the returned URL to the
// browser; webhooks and payment state live entirely on the provider side.

package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotConfigured = errors.New("billing provider is not configured")
	ErrMissingPrice  = errors.New("no price id for the requested plan")
)

// CheckoutRequest is what the plan-selection flow sends us.
type CheckoutRequest struct {
	Plan          string `json:"plan"` // "monthly" or "yearly"
	PriceID       string `json:"priceId,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	TrialDays     int    `json:"trialDays,omitempty"`
}

// Session is the provider's answer: an id and the URL to redirect to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Config carries the provider endpoints and the configured price ids.
type Config struct {
	CheckoutURL    string
	PortalURL      string
	MonthlyPriceID string
	YearlyPriceID  string
	TrialDays      int
}

// Client posts session requests to the provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a billing client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateCheckoutSession resolves the price id (request first, then config)
// and requests a checkout session. The yearly plan carries the configured
// trial period; monthly has none.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	if c.cfg.CheckoutURL == "" {
		return nil, ErrNotConfigured
	}

	priceID := req.PriceID
	if priceID == "" {
		if req.Plan == "yearly" {
			priceID = c.cfg.YearlyPriceID
		} else {
			priceID = c.cfg.MonthlyPriceID
		}
	}
	if priceID == "" {
		return nil, ErrMissingPrice
	}

	trialDays := req.TrialDays
	if trialDays == 0 && req.Plan == "yearly" {
		trialDays = c.cfg.TrialDays
	}

	payload := map[string]interface{}{
		"plan":             req.Plan,
		"priceId":          priceID,
		"clientReference": uuid.NewString(),
	}
	if req.CustomerEmail != "" {
		payload["customerEmail"] = req.CustomerEmail
	}
	if trialDays > 0 {
		payload["trialDays"] = trialDays
	}

	return c.post(ctx, c.cfg.CheckoutURL, payload)
}

// CreatePortalSession requests a customer portal session for managing an
// existing subscription.
func (c *Client) CreatePortalSession(ctx context.Context, customerEmail string) (*Session, error) {
	if c.cfg.PortalURL == "" {
		return nil, ErrNotConfigured
	}
	payload := map[string]interface{}{
		"customerEmail": customerEmail,
	}
	return c.post(ctx, c.cfg.PortalURL, payload)
}

func (c *Client) post(ctx context.Context, endpoint string, payload map[string]interface{}) (*Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("billing provider returned status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("billing provider returned malformed payload: %w", err)
	}
	if session.URL == "" {
		return nil, errors.New("billing provider returned no redirect URL")
	}
	return &session, nil
}
