// Package webapi provides the HTTP surface of payadvance. Routes are
// organized into sub-packages, one per service family:
// - advance: advance requests and eligibility
// - disbursement: payouts of approved advances
// - repayment: repayments against completed disbursements
// - user, auth, profile: registration, login, KYC and payroll profiles
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/payadvance/pkg/app"
	"github.com/amirasaad/payadvance/pkg/config"
	advanceweb "github.com/amirasaad/payadvance/webapi/advance"
	authweb "github.com/amirasaad/payadvance/webapi/auth"
	"github.com/amirasaad/payadvance/webapi/common"
	disbursementweb "github.com/amirasaad/payadvance/webapi/disbursement"
	profileweb "github.com/amirasaad/payadvance/webapi/profile"
	repaymentweb "github.com/amirasaad/payadvance/webapi/repayment"
	userweb "github.com/amirasaad/payadvance/webapi/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// SetupApp builds the fiber app and mounts the routes of every service
// family enabled in APP_SERVICES.
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
	}))

	if cfg.RateLimit != nil && cfg.RateLimit.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          cfg.RateLimit.MaxRequests,
			Expiration:   cfg.RateLimit.Window,
			KeyGenerator: clientKey,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("PayAdvance API is running! 🚀")
	})
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "ok", fiber.Map{"services": cfg.Services})
	})

	if cfg.Runs(config.ServiceUser) {
		authweb.Routes(fiberApp, a.AuthService)
		userweb.Routes(fiberApp, a.UserService, a.AuthService, cfg)
		profileweb.Routes(fiberApp, a.UserService)
	}
	if cfg.Runs(config.ServiceAdvance) {
		advanceweb.Routes(fiberApp, a.AdvanceService)
	}
	if cfg.Runs(config.ServiceDisbursement) {
		disbursementweb.Routes(fiberApp, a.DisbursementService)
	}
	if cfg.Runs(config.ServiceRepayment) {
		repaymentweb.Routes(fiberApp, a.RepaymentService)
	}
	return fiberApp
}

// clientKey uses the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address.
func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
