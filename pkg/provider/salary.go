package provider

import (
	"context"
	"fmt"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/user"
)

// ErrSalaryNotFound is returned when payroll has no profile for the employee.
var ErrSalaryNotFound = fmt.Errorf("%w: salary information", domain.ErrNotFound)

// SalaryProvider returns what an employee has earned so far this pay period.
// Transport failures are reported as domain.ErrDependencyUnavailable.
type SalaryProvider interface {
	GetSalaryInfo(ctx context.Context, employeeID uint) (*user.SalaryInfo, error)
}
