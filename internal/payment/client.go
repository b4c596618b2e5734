package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const userAgent = "carafe-orderflow/1.0"

// Client talks to the gateway's REST APIs over basic auth.
type Client struct {
	baseURL        string
	username       string
	password       string
	merchantEntity string
	httpClient     *http.Client
	logger         *zap.Logger
}

// NewClient builds a gateway client. An empty baseURL or credential set is
// allowed here; calls fail with ErrNotConfigured.
func NewClient(baseURL, username, password, merchantEntity string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:        baseURL,
		username:       username,
		password:       password,
		merchantEntity: merchantEntity,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
		logger:         logger,
	}
}

func (c *Client) configured() bool {
	return c.baseURL != "" && c.username != "" && c.password != "" && c.merchantEntity != ""
}

// CreateSession creates a hosted payment page session and returns the URL to
// redirect the customer to.
func (c *Client) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}
	req.Merchant.Entity = c.merchantEntity

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment_pages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	httpReq.SetBasicAuth(c.username, c.password)
	httpReq.Header.Set("Content-Type", mediaTypePaymentPages)
	httpReq.Header.Set("Accept", mediaTypePaymentPages)
	httpReq.Header.Set("User-Agent", userAgent)
	// The correlation id must be unique per call, not per payment attempt.
	httpReq.Header.Set("WP-CorrelationId", fmt.Sprintf("%s-%d", req.TransactionReference, time.Now().UnixMilli()))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("gateway unreachable", zap.Error(err))
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read session response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := &GatewayError{HTTPStatus: resp.StatusCode, Message: "payment session creation failed"}
		// Best effort; the body may not be JSON on a proxy error.
		_ = json.Unmarshal(respBody, gerr)
		c.logger.Error("gateway rejected session",
			zap.Int("status", resp.StatusCode),
			zap.String("error_name", gerr.ErrorName),
		)
		return nil, gerr
	}

	var sessionResp SessionResponse
	if err := json.Unmarshal(respBody, &sessionResp); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if sessionResp.URL == "" {
		return nil, &GatewayError{HTTPStatus: resp.StatusCode, Message: "no redirect URL in gateway response"}
	}

	return &Session{
		RedirectURL:          sessionResp.URL,
		TransactionReference: req.TransactionReference,
	}, nil
}

// FetchEventDetails follows a webhook event's payments link to pull the
// authorization code, scheme reference and instrument details. Strictly
// best-effort: reconciliation proceeds without it.
func (c *Client) FetchEventDetails(ctx context.Context, href string) (*EventDetails, error) {
	if href == "" {
		return nil, nil
	}
	if c.username == "" || c.password == "" {
		return nil, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return nil, fmt.Errorf("build detail request: %w", err)
	}
	httpReq.SetBasicAuth(c.username, c.password)
	httpReq.Header.Set("Accept", mediaTypePayments)
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{HTTPStatus: resp.StatusCode, Message: "payment detail fetch failed"}
	}

	var details EventDetails
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&details); err != nil {
		return nil, fmt.Errorf("decode detail response: %w", err)
	}
	return &details, nil
}
