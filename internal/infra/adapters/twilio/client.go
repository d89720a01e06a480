// File: internal/infra/adapters/twilio/client.go
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voice-ai-callbot/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CallControlAdapter = (*Client)(nil)

const defaultAPIBase = "https://api.twilio.com/2010-04-01"

// Client drives outbound calls through the Twilio REST API. Inbound call
// handling happens over TwiML webhooks, never through this client.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	base       string
	client     *http.Client
}

func NewClient(accountSID, authToken, fromNumber string) (*Client, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("twilio: account sid and auth token required")
	}
	if fromNumber == "" {
		return nil, errors.New("twilio: from number required")
	}
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		base:       defaultAPIBase,
		client:     &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *Client) StartCall(ctx context.Context, toNumber, webhookURL string) (string, error) {
	form := url.Values{}
	form.Set("To", toNumber)
	form.Set("From", c.fromNumber)
	form.Set("Url", webhookURL)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.base, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio http %d", resp.StatusCode)
	}

	var payload struct {
		Sid    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Sid == "" {
		return "", errors.New("twilio: response missing call sid")
	}
	return payload.Sid, nil
}

func (c *Client) CallStatus(ctx context.Context, callID string) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", c.base, c.accountSID, url.PathEscape(callID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio http %d", resp.StatusCode)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Status, nil
}
