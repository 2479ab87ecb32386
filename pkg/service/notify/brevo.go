package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
)

const (
	brevoEndpoint = "https://api.brevo.com/v3/smtp/email"
	sendTimeout   = 15 * time.Second
	excerptMaxLen = 200
)

// BrevoClient sends case alert emails through the Brevo transactional
// email API
type BrevoClient struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	senderName  string
	senderEmail string
}

// Option configures a BrevoClient
type Option func(*BrevoClient)

// WithHTTPClient replaces the underlying HTTP client (used in tests)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *BrevoClient) {
		c.httpClient = hc
	}
}

// WithEndpoint overrides the Brevo API endpoint (used in tests)
func WithEndpoint(endpoint string) Option {
	return func(c *BrevoClient) {
		c.endpoint = endpoint
	}
}

// NewBrevoClient creates a new Brevo email client
func NewBrevoClient(apiKey, senderName, senderEmail string, opts ...Option) *BrevoClient {
	c := &BrevoClient{
		httpClient: &http.Client{
			Timeout: sendTimeout,
		},
		endpoint:    brevoEndpoint,
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoSendRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoSendResponse struct {
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
}

// SendCaseAlert sends a case alert email to one recipient
func (c *BrevoClient) SendCaseAlert(ctx context.Context, to model.Recipient, caseData *model.Case) error {
	if caseData == nil {
		return goerr.New("case is nil")
	}

	subject := fmt.Sprintf("[VerdictTrace] Case %s escalated to %s", caseData.ID, caseData.SeverityTier)
	body := buildAlertBody(caseData)

	payload, err := json.Marshal(brevoSendRequest{
		Sender:      brevoAddress{Name: c.senderName, Email: c.senderEmail},
		To:          []brevoAddress{{Name: to.Name, Email: to.Email}},
		Subject:     subject,
		HTMLContent: body,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to encode email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return goerr.Wrap(err, "failed to build email request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "email request failed",
			goerr.T(model.ErrTagNotificationFailed),
			goerr.V("recipient", to.Email))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	// Brevo returns 201 on success
	if resp.StatusCode != http.StatusCreated {
		var apiResp brevoSendResponse
		_ = json.Unmarshal(raw, &apiResp)
		return goerr.New("brevo API rejected the email",
			goerr.T(model.ErrTagNotificationFailed),
			goerr.V("status", resp.StatusCode),
			goerr.V("message", apiResp.Message),
			goerr.V("recipient", to.Email))
	}

	return nil
}

// buildAlertBody renders the alert email HTML
func buildAlertBody(c *model.Case) string {
	return fmt.Sprintf(`<html><body>
<h2>Case %s — %s</h2>
<table>
<tr><td>Product SKU</td><td><strong>%s</strong></td></tr>
<tr><td>Failure Mode</td><td><strong>%s</strong></td></tr>
<tr><td>Severity Tier</td><td><strong>%s</strong></td></tr>
<tr><td>Complaints</td><td><strong>%d</strong></td></tr>
<tr><td>Injuries</td><td><strong>%d</strong></td></tr>
</table>
<p>%s</p>
<p style="color:#888;">VerdictTrace — The agent builds the case. The verdict belongs to humans.</p>
</body></html>`,
		c.ID, c.Title,
		c.ProductSKU, c.FailureMode, c.SeverityTier,
		c.ComplaintCount, c.InjuryCount,
		c.NarrativeExcerpt(excerptMaxLen),
	)
}
