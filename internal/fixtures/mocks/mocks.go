// Package mocks holds testify mocks for the ports services depend on.
package mocks

import (
	"context"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/lock"
	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// SalaryProvider is a mock provider.SalaryProvider.
type SalaryProvider struct {
	mock.Mock
}

// NewSalaryProvider creates a SalaryProvider whose expectations are asserted on cleanup.
func NewSalaryProvider(t testingT) *SalaryProvider {
	m := &SalaryProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SalaryProvider) GetSalaryInfo(ctx context.Context, employeeID uint) (*user.SalaryInfo, error) {
	args := m.Called(ctx, employeeID)
	info, _ := args.Get(0).(*user.SalaryInfo)
	return info, args.Error(1)
}

// PaymentGateway is a mock provider.PaymentGateway.
type PaymentGateway struct {
	mock.Mock
}

// NewPaymentGateway creates a PaymentGateway whose expectations are asserted on cleanup.
func NewPaymentGateway(t testingT) *PaymentGateway {
	m := &PaymentGateway{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *PaymentGateway) Execute(ctx context.Context, req provider.PaymentRequest) (*provider.PaymentResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*provider.PaymentResult)
	return res, args.Error(1)
}

// Bus is a mock eventbus.Bus.
type Bus struct {
	mock.Mock
}

// NewBus creates a Bus whose expectations are asserted on cleanup.
func NewBus(t testingT) *Bus {
	m := &Bus{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Bus) Publish(ctx context.Context, topic events.Topic, env events.Envelope) error {
	return m.Called(ctx, topic, env).Error(0)
}

func (m *Bus) Subscribe(topic events.Topic, handler eventbus.HandlerFunc) {
	m.Called(topic, handler)
}

// Locker is a mock lock.Locker.
type Locker struct {
	mock.Mock
}

// NewLocker creates a Locker whose expectations are asserted on cleanup.
func NewLocker(t testingT) *Locker {
	m := &Locker{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	release, _ := args.Get(0).(func())
	return release, args.Error(1)
}

var (
	_ provider.SalaryProvider = (*SalaryProvider)(nil)
	_ provider.PaymentGateway = (*PaymentGateway)(nil)
	_ eventbus.Bus            = (*Bus)(nil)
	_ lock.Locker             = (*Locker)(nil)
)
