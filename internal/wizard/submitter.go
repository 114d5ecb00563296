package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"monfily_backend/internal/intake/transport"
)

// Submitter performs the network submission of a completed lead.
type Submitter interface {
	// Submit posts the lead and returns the server's success message.
	Submit(ctx context.Context, lead transport.LeadSubmissionRequest) (string, error)
}

// HTTPSubmitter posts leads to the intake endpoint.
type HTTPSubmitter struct {
	client *resty.Client
}

// NewHTTPSubmitter creates a submitter against the given base URL.
func NewHTTPSubmitter(baseURL string, timeout time.Duration) *HTTPSubmitter {
	return &HTTPSubmitter{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// Submit implements Submitter. Non-success responses carry the server's JSON
// error message when one can be parsed, otherwise the raw body text.
func (s *HTTPSubmitter) Submit(ctx context.Context, lead transport.LeadSubmissionRequest) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(lead).
		Post("/api/contact")
	if err != nil {
		return "", fmt.Errorf("wizard: submit: %w", err)
	}

	var body struct {
		Message string `json:"message"`
	}
	parsed := json.Unmarshal(resp.Body(), &body) == nil && body.Message != ""

	if resp.IsSuccess() {
		if parsed {
			return body.Message, nil
		}
		return "", nil
	}

	if parsed {
		return "", errors.New(body.Message)
	}
	if text := strings.TrimSpace(string(resp.Body())); text != "" {
		return "", errors.New(text)
	}
	return "", fmt.Errorf("wizard: submit failed with status %d", resp.StatusCode())
}

var _ Submitter = (*HTTPSubmitter)(nil)
