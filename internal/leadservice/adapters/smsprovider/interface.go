package smsprovider

import "context"

// SendRequest holds the data for one outbound text message.
type SendRequest struct {
	From string
	To   string
	Body string
}

// SendResponse holds the outcome of a send attempt.
type SendResponse struct {
	ProviderMessageID string // provider-assigned id (Twilio message SID)
	Success           bool
	StatusCode        int
	ErrorMessage      string
	ProviderName      string
}

// Adapter is the interface for an outbound SMS provider. Sends are
// best-effort from the caller's point of view; the intake flow logs and
// swallows failures.
type Adapter interface {
	Send(ctx context.Context, req SendRequest) (*SendResponse, error)
	GetName() string
}
