package smsprovider

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

// TwilioProvider sends messages through Twilio's Messages REST API:
// a form-encoded POST to /2010-04-01/Accounts/{sid}/Messages.json with
// basic auth (account SID / auth token).
type TwilioProvider struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
}

// NewTwilioProvider creates the Twilio adapter. baseURL is normally
// https://api.twilio.com; tests point it at a local server.
func NewTwilioProvider(logger *slog.Logger, baseURL, accountSID, authToken string, httpClient *http.Client) *TwilioProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TwilioProvider{
		logger:     logger.With("provider", "twilio"),
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
	}
}

func (p *TwilioProvider) GetName() string { return "twilio" }

// twilioMessageResponse is the subset of Twilio's message resource we care
// about. On errors Twilio returns code/message instead of a SID.
type twilioMessageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (p *TwilioProvider) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.baseURL, p.accountSID)

	form := url.Values{}
	form.Set("From", req.From)
	form.Set("To", req.To)
	form.Set("Body", req.Body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Twilio request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(p.accountSID, p.authToken)

	p.logger.DebugContext(ctx, "Sending message via Twilio", "to", req.To, "body_len", len(req.Body))

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.ErrorContext(ctx, "Twilio request failed", "error", err, "to", req.To)
		return nil, fmt.Errorf("failed to send request to Twilio: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &SendResponse{
			Success:      false,
			StatusCode:   httpResp.StatusCode,
			ErrorMessage: fmt.Sprintf("failed to read Twilio response body: %v", err),
			ProviderName: p.GetName(),
		}, fmt.Errorf("failed to read Twilio response body (status %d): %w", httpResp.StatusCode, err)
	}

	var msg twilioMessageResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		p.logger.ErrorContext(ctx, "Failed to decode Twilio response", "error", err, "status_code", httpResp.StatusCode, "body", string(respBody))
		return &SendResponse{
			Success:      false,
			StatusCode:   httpResp.StatusCode,
			ErrorMessage: "undecodable Twilio response",
			ProviderName: p.GetName(),
		}, fmt.Errorf("failed to decode Twilio response (status %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		p.logger.WarnContext(ctx, "Twilio rejected message",
			"status_code", httpResp.StatusCode, "twilio_code", msg.Code, "twilio_message", msg.Message, "to", req.To)
		return &SendResponse{
			Success:      false,
			StatusCode:   httpResp.StatusCode,
			ErrorMessage: msg.Message,
			ProviderName: p.GetName(),
		}, nil
	}

	p.logger.InfoContext(ctx, "Message accepted by Twilio", "sid", msg.SID, "status", msg.Status, "to", req.To)
	return &SendResponse{
		ProviderMessageID: msg.SID,
		Success:           true,
		StatusCode:        httpResp.StatusCode,
		ProviderName:      p.GetName(),
	}, nil
}
