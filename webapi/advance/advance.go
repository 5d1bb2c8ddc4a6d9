// Package advance exposes the advance-request service over HTTP.
package advance

import (
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	advancesvc "github.com/amirasaad/payadvance/pkg/service/advance"
	"github.com/amirasaad/payadvance/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Routes mounts the advance-request endpoints under /api/advance-requests.
func Routes(app *fiber.App, svc *advancesvc.Service) {
	g := app.Group("/api/advance-requests")
	g.Post("/", Submit(svc))
	g.Get("/employee/:employeeId", ListByEmployee(svc))
	g.Get("/status/:status", ListByStatus(svc))
	g.Get("/eligibility/:employeeId", CheckEligibility(svc))
	g.Get("/:id", Get(svc))
	g.Patch("/:id/status", UpdateStatus(svc))
}

// Submit creates an advance request after checking eligibility.
// @Summary Submit an advance request
// @Description Checks eligibility and stores a PENDING advance request
// @Tags advance-requests
// @Accept json
// @Produce json
// @Param request body SubmitInput true "Advance request"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /api/advance-requests [post]
func Submit(svc *advancesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SubmitInput](c)
		if input == nil {
			return err
		}
		a, err := svc.Submit(c.Context(), advancesvc.SubmitRequest{
			EmployeeID:            input.EmployeeID,
			Amount:                input.Amount,
			Reason:                input.Reason,
			ExpectedRepaymentDate: input.ExpectedRepaymentDate,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't submit advance request", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Advance request submitted", toDTO(a))
	}
}

// Get returns one advance request.
// @Summary Get advance request
// @Tags advance-requests
// @Produce json
// @Param id path int true "Advance request ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/advance-requests/{id} [get]
func Get(svc *advancesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid advance request ID", err)
		}
		a, err := svc.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Advance request not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Advance request found", toDTO(a))
	}
}

// ListByEmployee returns an employee's advance requests, newest first.
// @Summary List advance requests of an employee
// @Tags advance-requests
// @Produce json
// @Param employeeId path int true "Employee ID"
// @Success 200 {object} common.Response
// @Router /api/advance-requests/employee/{employeeId} [get]
func ListByEmployee(svc *advancesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		employeeID, err := common.ParseID(c, "employeeId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid employee ID", err)
		}
		list, err := svc.ListByEmployee(c.Context(), employeeID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list advance requests", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Advance requests", toDTOs(list))
	}
}

// ListByStatus returns advance requests in a status, newest first.
// @Summary List advance requests by status
// @Tags advance-requests
// @Produce json
// @Param status path string true "PENDING, APPROVED, REJECTED or DISBURSED"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /api/advance-requests/status/{status} [get]
func ListByStatus(svc *advancesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := advance.ParseStatus(c.Params("status"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid status", err)
		}
		list, err := svc.ListByStatus(c.Context(), status)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list advance requests", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Advance requests", toDTOs(list))
	}
}

// UpdateStatus approves, rejects or disburses an advance request.
// @Summary Update advance request status
// @Tags advance-requests
// @Accept json
// @Produce json
// @Param id path int true "Advance request ID"
// @Param request body StatusInput true "Status change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/advance-requests/{id}/status [patch]
func UpdateStatus(svc *advancesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid advance request ID", err)
		}
		input, err := common.BindAndValidate[StatusInput](c)
		if input == nil {
			return err
		}
		status, err := advance.ParseStatus(input.Status)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid status", err)
		}
		a, err := svc.UpdateStatus(c.Context(), id, advance.StatusChange{
			Status:          status,
			ApprovedBy:      input.ApprovedBy,
			RejectionReason: input.RejectionReason,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update advance request", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Advance request updated", toDTO(a))
	}
}

// CheckEligibility evaluates an employee for an optional amount.
// @Summary Check eligibility
// @Tags advance-requests
// @Produce json
// @Param employeeId path int true "Employee ID"
// @Param amount query string false "Requested amount"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /api/advance-requests/eligibility/{employeeId} [get]
func CheckEligibility(svc *advancesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		employeeID, err := common.ParseID(c, "employeeId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid employee ID", err)
		}
		amount := decimal.Zero
		if raw := c.Query("amount"); raw != "" {
			amount, err = decimal.NewFromString(raw)
			if err != nil || amount.IsNegative() {
				return common.ProblemDetailsJSON(c, "Invalid amount", domain.ErrValidation,
					"amount must be a non-negative decimal")
			}
		}
		result, err := svc.CheckEligibility(c.Context(), employeeID, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't check eligibility", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Eligibility evaluated", toEligibilityDTO(result))
	}
}
