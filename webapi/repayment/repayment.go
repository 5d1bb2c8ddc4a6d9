// Package repayment exposes repayments over HTTP.
package repayment

import (
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	repaymentsvc "github.com/amirasaad/payadvance/pkg/service/repayment"
	"github.com/amirasaad/payadvance/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes mounts the repayment endpoints under /api/repayments.
func Routes(app *fiber.App, svc *repaymentsvc.Service) {
	g := app.Group("/api/repayments")
	g.Post("/", Create(svc))
	g.Get("/disbursement/:disbursementId", ListByDisbursement(svc))
	g.Get("/employee/:employeeId", ListByEmployee(svc))
	g.Get("/:id", Get(svc))
	g.Patch("/:id/status", UpdateStatus(svc))
	g.Post("/:id/process", Process(svc))
}

// Create schedules a repayment against a completed disbursement.
// @Summary Create repayment
// @Description The amount may not exceed the outstanding balance
// @Tags repayments
// @Accept json
// @Produce json
// @Param request body CreateInput true "Repayment"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/repayments [post]
func Create(svc *repaymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateInput](c)
		if input == nil {
			return err
		}
		r, err := svc.Create(c.Context(), repaymentsvc.CreateRequest{
			DisbursementID: input.DisbursementID,
			EmployeeID:     input.EmployeeID,
			Amount:         input.Amount,
			PaymentMethod:  input.PaymentMethod,
			PaymentDate:    input.PaymentDate,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create repayment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Repayment created", toDTO(r))
	}
}

// Get returns one repayment.
// @Summary Get repayment
// @Tags repayments
// @Produce json
// @Param id path int true "Repayment ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/repayments/{id} [get]
func Get(svc *repaymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid repayment ID", err)
		}
		r, err := svc.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Repayment not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Repayment found", toDTO(r))
	}
}

// ListByDisbursement returns the repayments of a disbursement, newest first.
// @Summary List repayments of a disbursement
// @Tags repayments
// @Produce json
// @Param disbursementId path int true "Disbursement ID"
// @Success 200 {object} common.Response
// @Router /api/repayments/disbursement/{disbursementId} [get]
func ListByDisbursement(svc *repaymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "disbursementId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid disbursement ID", err)
		}
		list, err := svc.ListByDisbursement(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list repayments", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Repayments", toDTOs(list))
	}
}

// ListByEmployee returns an employee's repayments, newest first.
// @Summary List repayments of an employee
// @Tags repayments
// @Produce json
// @Param employeeId path int true "Employee ID"
// @Success 200 {object} common.Response
// @Router /api/repayments/employee/{employeeId} [get]
func ListByEmployee(svc *repaymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		employeeID, err := common.ParseID(c, "employeeId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid employee ID", err)
		}
		list, err := svc.ListByEmployee(c.Context(), employeeID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list repayments", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Repayments", toDTOs(list))
	}
}

// UpdateStatus moves a repayment along PENDING, PROCESSING, COMPLETED or FAILED.
// @Summary Update repayment status
// @Tags repayments
// @Accept json
// @Produce json
// @Param id path int true "Repayment ID"
// @Param request body StatusInput true "Status change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/repayments/{id}/status [patch]
func UpdateStatus(svc *repaymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid repayment ID", err)
		}
		input, err := common.BindAndValidate[StatusInput](c)
		if input == nil {
			return err
		}
		status, err := payment.ParseStatus(input.Status)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid status", err)
		}
		r, err := svc.UpdateStatus(c.Context(), id, status, input.FailureReason)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update repayment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Repayment updated", toDTO(r))
	}
}

// Process collects a PENDING repayment through the payment gateway.
// @Summary Process repayment
// @Tags repayments
// @Produce json
// @Param id path int true "Repayment ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /api/repayments/{id}/process [post]
func Process(svc *repaymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid repayment ID", err)
		}
		r, err := svc.Process(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't process repayment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Repayment processed", toDTO(r))
	}
}
