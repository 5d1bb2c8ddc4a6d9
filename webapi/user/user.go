// Package user exposes registration, lookup and KYC updates over HTTP.
package user

import (
	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/amirasaad/payadvance/pkg/middleware"
	authsvc "github.com/amirasaad/payadvance/pkg/service/auth"
	usersvc "github.com/amirasaad/payadvance/pkg/service/user"
	"github.com/amirasaad/payadvance/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Routes mounts the user endpoints. /api/users/me and the notification
// inbox need a bearer token.
func Routes(app *fiber.App, userSvc *usersvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	var jwtCfg *config.Jwt
	if cfg.Auth != nil {
		jwtCfg = cfg.Auth.Jwt
	}
	app.Post("/api/users/register", Register(userSvc))
	app.Get("/api/users/me", middleware.JwtProtected(jwtCfg), Me(userSvc, authSvc))
	app.Get("/api/users/:id", GetUser(userSvc))
	app.Patch("/api/users/:id/kyc-status", UpdateKycStatus(userSvc))
	app.Get("/api/notifications", middleware.JwtProtected(jwtCfg), ListNotifications(userSvc, authSvc))
	app.Patch("/api/notifications/:id/read", middleware.JwtProtected(jwtCfg), MarkNotificationRead(userSvc, authSvc))
}

// currentUserID reads the caller from the bearer token. When ok is false the
// 401 response has been written and err is what the handler returns.
func currentUserID(c *fiber.Ctx, authSvc *authsvc.Service) (userID uint, ok bool, err error) {
	token, ok := c.Locals(middleware.UserContextKey).(*jwt.Token)
	if !ok {
		return 0, false, common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
	}
	userID, err = authSvc.GetCurrentUserID(token)
	if err != nil {
		return 0, false, common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
	}
	return userID, true, nil
}

// Register creates a user account.
// @Summary Register a user
// @Description Creates a user with KYC status PENDING
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterInput true "Registration"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/users/register [post]
func Register(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterInput](c)
		if input == nil {
			return err
		}
		u, err := userSvc.Register(c.Context(), user.Registration{
			Email:       input.Email,
			Password:    input.Password,
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			Role:        user.Role(input.Role),
			PhoneNumber: input.PhoneNumber,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't register user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User registered", ToDTO(u))
	}
}

// Me returns the user the bearer token was issued to.
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/users/me [get]
// @Security Bearer
func Me(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := currentUserID(c, authSvc)
		if !ok {
			return err
		}
		u, err := userSvc.Get(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "User not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", ToDTO(u))
	}
}

// GetUser returns a user by ID.
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/users/{id} [get]
func GetUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		u, err := userSvc.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "User not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", ToDTO(u))
	}
}

// UpdateKycStatus moves a user's KYC status forward.
// @Summary Update KYC status
// @Description PENDING to IN_PROGRESS, then VERIFIED or REJECTED
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param kycStatus query string true "New KYC status"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/users/{id}/kyc-status [patch]
func UpdateKycStatus(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		status, err := user.ParseKycStatus(c.Query("kycStatus"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid KYC status", err)
		}
		u, err := userSvc.UpdateKycStatus(c.Context(), id, status)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update KYC status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC status updated", ToDTO(u))
	}
}

// ListNotifications returns the caller's notifications, newest first.
// @Summary List my notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/notifications [get]
// @Security Bearer
func ListNotifications(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := currentUserID(c, authSvc)
		if !ok {
			return err
		}
		list, err := userSvc.ListNotifications(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list notifications", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Notifications found", ToNotificationDTOs(list))
	}
}

// MarkNotificationRead flags one of the caller's notifications as read.
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/notifications/{id}/read [patch]
// @Security Bearer
func MarkNotificationRead(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := currentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid notification ID", err)
		}
		n, err := userSvc.MarkNotificationRead(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Notification not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Notification marked read", ToNotificationDTO(n))
	}
}
