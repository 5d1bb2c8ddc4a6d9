// Package app assembles the payadvance services, their event listeners and
// background jobs on top of the infrastructure in config.Deps.
package app

import (
	"log/slog"

	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/handler/common"
	"github.com/amirasaad/payadvance/pkg/outbox"
	"github.com/amirasaad/payadvance/pkg/service/advance"
	"github.com/amirasaad/payadvance/pkg/service/auth"
	"github.com/amirasaad/payadvance/pkg/service/disbursement"
	"github.com/amirasaad/payadvance/pkg/service/repayment"
	"github.com/amirasaad/payadvance/pkg/service/user"
)

type App struct {
	Deps                config.Deps
	Config              *config.App
	AuthService         *auth.Service
	UserService         *user.Service
	AdvanceService      *advance.Service
	DisbursementService *disbursement.Service
	RepaymentService    *repayment.Service
	Publisher           *eventbus.Publisher
	Dispatcher          *outbox.Dispatcher

	idempotency *common.IdempotencyTracker
	logger      *slog.Logger
}

// New builds every service and subscribes the listeners of the service
// families enabled in APP_SERVICES. Without an external salary provider the
// advance service reads salaries from the in-process user service.
func New(deps config.Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Config = cfg
	app := &App{
		Config:      cfg,
		idempotency: common.NewIdempotencyTracker(0),
		logger:      deps.Logger.With("component", "app"),
	}

	app.UserService = user.New(deps)
	if deps.SalaryProvider == nil {
		deps.SalaryProvider = app.UserService
	}
	app.Deps = deps

	if cfg.Auth != nil && cfg.Auth.Jwt != nil {
		app.AuthService = auth.NewWithJWT(deps.Uow, cfg.Auth.Jwt, deps.Logger)
	} else {
		app.AuthService = auth.NewWithBasic(deps.Uow, deps.Logger)
	}
	app.AdvanceService = advance.New(deps)
	app.DisbursementService = disbursement.New(deps)
	app.RepaymentService = repayment.New(deps)

	publishTimeout, batchSize, maxAttempts := outboxSettings(cfg)
	app.Publisher = eventbus.NewPublisher(deps.EventBus, publishTimeout, deps.Logger)
	app.Dispatcher = outbox.NewDispatcher(deps.Uow, app.Publisher, batchSize, maxAttempts, deps.Logger)

	app.subscribe()
	return app
}
