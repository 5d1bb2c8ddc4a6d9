package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/google/uuid"
)

// ErrPaymentDeclined is returned by MockPaymentGateway when told to fail.
var ErrPaymentDeclined = errors.New("payment declined")

// MockPaymentGateway settles every transfer immediately with a fresh
// transaction reference. It is for local development and tests only.
type MockPaymentGateway struct {
	mu       sync.Mutex
	failFor  map[uint]bool
	executed []provider.PaymentRequest
}

// NewMockPaymentGateway creates a gateway that accepts every payment.
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{failFor: make(map[uint]bool)}
}

// FailFor makes payments for the given entity id decline.
func (m *MockPaymentGateway) FailFor(entityID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[entityID] = true
}

// Execute records the request and returns a reference of the form "TXN-" plus 12 hex digits.
func (m *MockPaymentGateway) Execute(ctx context.Context, req provider.PaymentRequest) (*provider.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.executed = append(m.executed, req)
	if m.failFor[req.EntityID] {
		return nil, fmt.Errorf("%w: %s %d", ErrPaymentDeclined, strings.ToLower(string(req.Kind)), req.EntityID)
	}
	ref := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return &provider.PaymentResult{TransactionReference: "TXN-" + ref}, nil
}

// Executed returns the requests seen so far.
func (m *MockPaymentGateway) Executed() []provider.PaymentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provider.PaymentRequest(nil), m.executed...)
}

var _ provider.PaymentGateway = (*MockPaymentGateway)(nil)
