// Package api is the REST client for the guardian backend.
//
// The REST surface bounds a consult's lifecycle: sessions are started
// and ended here, while everything inside the session flows over the
// WebSocket handled by the transport package. Calls are not retried;
// a failure is returned to the caller to act on.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client calls the guardian backend REST API.
type Client struct {
	config *clientConfig
}

type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures the client.
type Option func(*clientConfig)

// WithHTTPClient supplies a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// NewClient creates a client for the backend at baseURL, e.g.
// "http://localhost:8000".
func NewClient(baseURL string, opts ...Option) *Client {
	config := &clientConfig{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.httpClient == nil {
		config.httpClient = &http.Client{Timeout: config.timeout}
	}
	return &Client{config: config}
}

// WSURL returns the WebSocket endpoint for a session, derived from the
// client's base URL.
func (c *Client) WSURL(sessionID string) string {
	ws := c.config.baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return ws + "/ws/consult/" + url.PathEscape(sessionID)
}

// StartConsult opens a new session for a patient.
func (c *Client) StartConsult(ctx context.Context, patientID, providerID string) (*StartConsultResponse, error) {
	req := &StartConsultRequest{PatientID: patientID, ProviderID: providerID}
	var resp StartConsultResponse
	if err := c.do(ctx, http.MethodPost, "/api/consult/start", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EndConsult finalizes a session, returning the SOAP note and billing
// summary.
func (c *Client) EndConsult(ctx context.Context, sessionID string) (*EndConsultResponse, error) {
	var resp EndConsultResponse
	path := "/api/consult/" + url.PathEscape(sessionID) + "/end"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddTranscript injects a transcript line into a session without audio.
func (c *Client) AddTranscript(ctx context.Context, sessionID, text, speaker string) (*TranscriptStatus, error) {
	req := &transcriptInput{SessionID: sessionID, Text: text, Speaker: speaker}
	var resp TranscriptStatus
	path := "/api/consult/" + url.PathEscape(sessionID) + "/transcript"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckSafety forces an immediate safety evaluation of the buffered
// transcript.
func (c *Client) CheckSafety(ctx context.Context, sessionID string) (*SafetyCheckStatus, error) {
	var resp SafetyCheckStatus
	path := "/api/consult/" + url.PathEscape(sessionID) + "/check-safety"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionStatus reports a session's server-side state.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	var resp SessionStatus
	path := "/api/consult/" + url.PathEscape(sessionID) + "/status"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPatient fetches a patient record.
func (c *Client) GetPatient(ctx context.Context, patientID string) (*Patient, error) {
	var resp Patient
	path := "/api/patients/" + url.PathEscape(patientID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SimulateDanger injects a dangerous prescription line into a session
// and runs the safety pipeline on it. Demo tooling.
func (c *Client) SimulateDanger(ctx context.Context, sessionID, drugName string) (*DemoDangerResult, error) {
	query := url.Values{"session_id": {sessionID}}
	if drugName != "" {
		query.Set("drug_name", drugName)
	}
	var resp DemoDangerResult
	if err := c.do(ctx, http.MethodPost, "/api/demo/simulate-danger", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health reports backend service availability.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.config.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.config.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
