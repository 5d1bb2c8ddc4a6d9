// Package profile exposes employee and employer profiles over HTTP,
// including the salary-info contract the advance service reads.
package profile

import (
	"github.com/amirasaad/payadvance/pkg/domain"
	usersvc "github.com/amirasaad/payadvance/pkg/service/user"
	"github.com/amirasaad/payadvance/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes mounts /api/employees and /api/employers.
func Routes(app *fiber.App, svc *usersvc.Service) {
	employees := app.Group("/api/employees")
	employees.Post("/", CreateEmployee(svc))
	employees.Get("/:userId/salary-info", SalaryInfo(svc))
	employees.Get("/:userId", GetEmployee(svc))
	employees.Put("/:userId", UpdateEmployee(svc))

	employers := app.Group("/api/employers")
	employers.Post("/", CreateEmployer(svc))
	employers.Get("/:userId/employees", ListEmployees(svc))
	employers.Get("/:userId", GetEmployer(svc))
	employers.Put("/:userId", UpdateEmployer(svc))
}

// CreateEmployee attaches an employee profile to a user.
// @Summary Create employee profile
// @Tags employees
// @Accept json
// @Produce json
// @Param request body EmployeeInput true "Employee profile"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/employees [post]
func CreateEmployee(svc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[EmployeeInput](c)
		if input == nil {
			return err
		}
		if input.UserID == 0 {
			return common.ProblemDetailsJSON(c, "Validation failed", domain.ErrValidation,
				map[string]string{"userId": "failed on required"})
		}
		p := input.toDomain()
		if err := svc.CreateEmployeeProfile(c.Context(), p); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create employee profile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Employee profile created", toEmployeeDTO(p))
	}
}

// GetEmployee returns a user's employee profile.
// @Summary Get employee profile
// @Tags employees
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/employees/{userId} [get]
func GetEmployee(svc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParseID(c, "userId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		p, err := svc.GetEmployeeProfile(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Employee profile not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Employee profile found", toEmployeeDTO(p))
	}
}

// UpdateEmployee replaces the editable fields of an employee profile.
// @Summary Update employee profile
// @Tags employees
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param request body EmployeeInput true "Employee profile"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/employees/{userId} [put]
func UpdateEmployee(svc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParseID(c, "userId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		input, err := common.BindAndValidate[EmployeeInput](c)
		if input == nil {
			return err
		}
		p, err := svc.UpdateEmployeeProfile(c.Context(), userID, input.toDomain())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update employee profile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Employee profile updated", toEmployeeDTO(p))
	}
}

// SalaryInfo reports the monthly salary and the amount earned so far.
// @Summary Salary info
// @Description Read by the advance service to evaluate eligibility
// @Tags employees
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/employees/{userId}/salary-info [get]
func SalaryInfo(svc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParseID(c, "userId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		info, err := svc.GetSalaryInfo(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Salary info not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Salary info", toSalaryInfoDTO(info))
	}
}

// CreateEmployer attaches an employer profile to a user.
// @Summary Create employer profile
// @Tags employers
// @Accept json
// @Produce json
// @Param request body EmployerInput true "Employer profile"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/employers [post]
func CreateEmployer(svc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[EmployerInput](c)
		if input == nil {
			return err
		}
		if input.UserID == 0 {
			return common.ProblemDetailsJSON(c, "Validation failed", domain.ErrValidation,
				map[string]string{"userId": "failed on required"})
		}
		p := input.toDomain()
		if err := svc.CreateEmployerProfile(c.Context(), p); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create employer profile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Employer profile created", toEmployerDTO(p))
	}
}

// GetEmployer returns a user's employer profile.
// @Summary Get employer profile
// @Tags employers
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/employers/{userId} [get]
func GetEmployer(svc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParseID(c, "userId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		p, err := svc.GetEmployerProfile(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Employer profile not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Employer profile found", toEmployerDTO(p))
	}
}

// UpdateEmployer replaces the editable fields of an employer profile.
// @Summary Update employer profile
// @Tags employers
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param request body EmployerInput true "Employer profile"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/employers/{userId} [put]
func UpdateEmployer(svc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParseID(c, "userId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		input, err := common.BindAndValidate[EmployerInput](c)
		if input == nil {
			return err
		}
		p, err := svc.UpdateEmployerProfile(c.Context(), userID, input.toDomain())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update employer profile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Employer profile updated", toEmployerDTO(p))
	}
}

// ListEmployees returns the employee profiles of an employer.
// @Summary List an employer's employees
// @Tags employers
// @Produce json
// @Param userId path int true "Employer user ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/employers/{userId}/employees [get]
func ListEmployees(svc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParseID(c, "userId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		list, err := svc.ListEmployees(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list employees", err)
		}
		out := make([]EmployeeDTO, 0, len(list))
		for _, p := range list {
			out = append(out, toEmployeeDTO(p))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Employees", out)
	}
}
