package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"textflix/internal/services"
)

// Message captures the Twilio response fields the caller consumes.
type Message struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	To           string `json:"to"`
	From         string `json:"from"`
	Body         string `json:"body"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Sender defines the outbound SMS operation.
type Sender interface {
	SendSMS(ctx context.Context, to, body string) (*Message, error)
}

// Client talks to the Twilio Messages REST API.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

var _ Sender = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Twilio client.
func New(accountSID, authToken, fromNumber, baseURL string, opts ...Option) (*Client, error) {
	accountSID = strings.TrimSpace(accountSID)
	authToken = strings.TrimSpace(authToken)
	fromNumber = strings.TrimSpace(fromNumber)
	if accountSID == "" || authToken == "" {
		return nil, errors.New("twilio credentials required")
	}
	if fromNumber == "" {
		return nil, errors.New("twilio from number required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	client := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SendSMS delivers a single outbound message.
func (c *Client) SendSMS(ctx context.Context, to, body string) (*Message, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, errors.New("twilio send: destination required")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("twilio send: body required")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twilio send: build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "twilio", "send sms",
			fmt.Sprintf("Request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "twilio", "send sms",
			fmt.Sprintf("Failed to read response (latency=%v)", latency), err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		marker := services.ErrExternalService
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			marker = services.ErrConfiguration
		case http.StatusBadRequest:
			marker = services.ErrValidation
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			marker = services.ErrTransient
		}
		return nil, services.Wrap(marker, "twilio", "send sms",
			fmt.Sprintf("Unexpected status %d (latency=%v): %s", resp.StatusCode, latency, strings.TrimSpace(string(raw))), nil)
	}

	var message Message
	if err := json.Unmarshal(raw, &message); err != nil {
		return nil, services.Wrap(services.ErrTransient, "twilio", "send sms", "Failed to decode response", err)
	}
	if message.ErrorCode != nil {
		return nil, services.Wrap(services.ErrExternalService, "twilio", "send sms",
			fmt.Sprintf("API error %d: %s", *message.ErrorCode, message.ErrorMessage), nil)
	}
	return &message, nil
}
