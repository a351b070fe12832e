package smsprovider

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// MockProvider is an in-memory provider for local development and tests.
// It records every send and can be told to fail.
type MockProvider struct {
	logger *slog.Logger
	name   string

	mu   sync.Mutex
	sent []SendRequest
	fail bool
}

// NewMockProvider creates a MockProvider.
func NewMockProvider(logger *slog.Logger, name string) *MockProvider {
	if name == "" {
		name = "mock-provider"
	}
	return &MockProvider{
		logger: logger.With("provider", name),
		name:   name,
	}
}

func (p *MockProvider) GetName() string { return p.name }

// SetFail makes subsequent Send calls report failure.
func (p *MockProvider) SetFail(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = fail
}

// Sent returns a copy of everything sent so far.
func (p *MockProvider) Sent() []SendRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SendRequest, len(p.sent))
	copy(out, p.sent)
	return out
}

func (p *MockProvider) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	p.mu.Lock()
	fail := p.fail
	if !fail {
		p.sent = append(p.sent, req)
	}
	p.mu.Unlock()

	if fail {
		p.logger.WarnContext(ctx, "MockProvider: simulated send failure", "to", req.To)
		return &SendResponse{
			Success:      false,
			StatusCode:   500,
			ErrorMessage: "simulated failure",
			ProviderName: p.name,
		}, nil
	}

	p.logger.InfoContext(ctx, "MockProvider: message sent (simulated)", "to", req.To, "body_len", len(req.Body))
	return &SendResponse{
		ProviderMessageID: uuid.NewString(),
		Success:           true,
		StatusCode:        200,
		ProviderName:      p.name,
	}, nil
}
