// Package disbursement exposes disbursements over HTTP.
package disbursement

import (
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	disbursementsvc "github.com/amirasaad/payadvance/pkg/service/disbursement"
	"github.com/amirasaad/payadvance/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes mounts the disbursement endpoints under /api/disbursements.
func Routes(app *fiber.App, svc *disbursementsvc.Service) {
	g := app.Group("/api/disbursements")
	g.Post("/", Create(svc))
	g.Get("/advance-request/:advanceRequestId", GetByAdvanceRequest(svc))
	g.Get("/employee/:employeeId", ListByEmployee(svc))
	g.Get("/:id", Get(svc))
	g.Patch("/:id/status", UpdateStatus(svc))
	g.Post("/:id/process", Process(svc))
}

// Create stores a PENDING disbursement for an approved advance.
// @Summary Create disbursement
// @Description Fee and total repayment are derived when feeAmount is omitted
// @Tags disbursements
// @Accept json
// @Produce json
// @Param request body CreateInput true "Disbursement"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/disbursements [post]
func Create(svc *disbursementsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateInput](c)
		if input == nil {
			return err
		}
		d, err := svc.Create(c.Context(), disbursementsvc.CreateRequest{
			AdvanceRequestID:      input.AdvanceRequestID,
			EmployeeID:            input.EmployeeID,
			Amount:                input.Amount,
			FeeAmount:             input.FeeAmount,
			PaymentMethod:         input.PaymentMethod,
			ExpectedRepaymentDate: input.ExpectedRepaymentDate,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create disbursement", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Disbursement created", toDTO(d))
	}
}

// Get returns one disbursement.
// @Summary Get disbursement
// @Tags disbursements
// @Produce json
// @Param id path int true "Disbursement ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/disbursements/{id} [get]
func Get(svc *disbursementsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid disbursement ID", err)
		}
		d, err := svc.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Disbursement not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Disbursement found", toDTO(d))
	}
}

// GetByAdvanceRequest returns the disbursement of an advance request.
// @Summary Get disbursement by advance request
// @Tags disbursements
// @Produce json
// @Param advanceRequestId path int true "Advance request ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/disbursements/advance-request/{advanceRequestId} [get]
func GetByAdvanceRequest(svc *disbursementsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "advanceRequestId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid advance request ID", err)
		}
		d, err := svc.GetByAdvanceRequest(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Disbursement not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Disbursement found", toDTO(d))
	}
}

// ListByEmployee returns an employee's disbursements, newest first.
// @Summary List disbursements of an employee
// @Tags disbursements
// @Produce json
// @Param employeeId path int true "Employee ID"
// @Success 200 {object} common.Response
// @Router /api/disbursements/employee/{employeeId} [get]
func ListByEmployee(svc *disbursementsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		employeeID, err := common.ParseID(c, "employeeId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid employee ID", err)
		}
		list, err := svc.ListByEmployee(c.Context(), employeeID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list disbursements", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Disbursements", toDTOs(list))
	}
}

// UpdateStatus moves a disbursement along PENDING, PROCESSING, COMPLETED or FAILED.
// @Summary Update disbursement status
// @Tags disbursements
// @Accept json
// @Produce json
// @Param id path int true "Disbursement ID"
// @Param request body StatusInput true "Status change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/disbursements/{id}/status [patch]
func UpdateStatus(svc *disbursementsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid disbursement ID", err)
		}
		input, err := common.BindAndValidate[StatusInput](c)
		if input == nil {
			return err
		}
		status, err := payment.ParseStatus(input.Status)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid status", err)
		}
		d, err := svc.UpdateStatus(c.Context(), id, status, input.FailureReason)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update disbursement", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Disbursement updated", toDTO(d))
	}
}

// Process sends a PENDING disbursement to the payment gateway.
// @Summary Process disbursement
// @Tags disbursements
// @Produce json
// @Param id path int true "Disbursement ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /api/disbursements/{id}/process [post]
func Process(svc *disbursementsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid disbursement ID", err)
		}
		d, err := svc.Process(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't process disbursement", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Disbursement processed", toDTO(d))
	}
}
