// Package mailer sends transactional email through an HTTP mail gateway.
// The real gateway speaks the Resend wire format; a mock implementation
// is used in development and tests.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Mailer sends a single email and returns the gateway's message ID.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// ResendMailer sends email through the Resend HTTP API.
type ResendMailer struct {
	BaseURL    string
	APIKey     string
	From       string
	httpClient *http.Client
}

// NewResendMailer creates a new ResendMailer
func NewResendMailer(baseURL, apiKey, from string) *ResendMailer {
	return &ResendMailer{
		BaseURL: baseURL,
		APIKey:  apiKey,
		From:    from,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send delivers one email via the gateway
func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	requestBody := map[string]interface{}{
		"from":    m.From,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/emails", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("mail gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return response.ID, nil
}

// MockMailer logs instead of sending. Used when mocking is enabled or no
// API key is configured.
type MockMailer struct{}

// NewMockMailer creates a new MockMailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send simulates a delivery
func (m *MockMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	msgID := fmt.Sprintf("MOCK-MAIL-%d", time.Now().UnixNano())
	log.Printf("[Mock Mailer] Simulating send to %s: %q -> %s", to, subject, msgID)
	return msgID, nil
}
