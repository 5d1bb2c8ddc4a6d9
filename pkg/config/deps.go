package config

import (
	"log/slog"

	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/lock"
	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/amirasaad/payadvance/pkg/repository"
)

// Deps holds all infrastructure dependencies for building the app and services.
type Deps struct {
	Uow            repository.UnitOfWork
	EventBus       eventbus.Bus
	SalaryProvider provider.SalaryProvider
	PaymentGateway provider.PaymentGateway
	Locker         lock.Locker
	Logger         *slog.Logger
	Config         *App
}
