package webapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/amirasaad/payadvance/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

// PostgresFlowTestSuite runs the advance lifecycle against Postgres.
type PostgresFlowTestSuite struct {
	testutils.E2ETestSuite
}

func (s *PostgresFlowTestSuite) TestAdvanceLifecycle() {
	employeeID := s.Employee("31000.00")

	created := s.Data(http.MethodPost, "/api/advance-requests",
		fmt.Sprintf(`{"employeeId":%d,"amount":"100.00","reason":"rent"}`, employeeID), fiber.StatusCreated)
	advanceID := testutils.ID(created)

	s.Data(http.MethodPatch, fmt.Sprintf("/api/advance-requests/%d/status", advanceID),
		`{"status":"APPROVED","approvedBy":1}`, fiber.StatusOK)
	s.Dispatch()

	d := s.Data(http.MethodGet, fmt.Sprintf("/api/disbursements/advance-request/%d", advanceID), "", fiber.StatusOK)
	s.Equal("102.00", d["totalRepaymentAmount"])

	notices, err := s.App.UserService.ListNotifications(context.Background(), employeeID)
	s.Require().NoError(err)
	s.Require().Len(notices, 1)
	s.Equal("Your salary advance was approved", notices[0].Subject)

	completed := s.Data(http.MethodPost, fmt.Sprintf("/api/disbursements/%d/process", testutils.ID(d)), "", fiber.StatusOK)
	s.Equal("COMPLETED", completed["status"])
	s.Dispatch()

	a := s.Data(http.MethodGet, fmt.Sprintf("/api/advance-requests/%d", advanceID), "", fiber.StatusOK)
	s.Equal("DISBURSED", a["status"])

	s.Data(http.MethodPost, "/api/repayments",
		fmt.Sprintf(`{"disbursementId":%d,"amount":"102.00","paymentMethod":"PAYROLL_DEDUCTION"}`, testutils.ID(d)),
		fiber.StatusCreated)
	s.Data(http.MethodPost, "/api/repayments",
		fmt.Sprintf(`{"disbursementId":%d,"amount":"0.01","paymentMethod":"PAYROLL_DEDUCTION"}`, testutils.ID(d)),
		fiber.StatusBadRequest)
}

func (s *PostgresFlowTestSuite) TestFailedPayoutLifecycle() {
	employeeID := s.Employee("31000.00")

	created := s.Data(http.MethodPost, "/api/advance-requests",
		fmt.Sprintf(`{"employeeId":%d,"amount":"100.00","reason":"rent"}`, employeeID), fiber.StatusCreated)
	advanceID := testutils.ID(created)
	s.Data(http.MethodPatch, fmt.Sprintf("/api/advance-requests/%d/status", advanceID),
		`{"status":"APPROVED","approvedBy":1}`, fiber.StatusOK)
	s.Dispatch()

	d := s.Data(http.MethodGet, fmt.Sprintf("/api/disbursements/advance-request/%d", advanceID), "", fiber.StatusOK)
	s.Gateway.FailFor(testutils.ID(d))
	failed := s.Data(http.MethodPost, fmt.Sprintf("/api/disbursements/%d/process", testutils.ID(d)), "", fiber.StatusOK)
	s.Equal("FAILED", failed["status"])
	s.Dispatch()

	a := s.Data(http.MethodGet, fmt.Sprintf("/api/advance-requests/%d", advanceID), "", fiber.StatusOK)
	s.Equal("REJECTED", a["status"])

	s.Data(http.MethodPost, "/api/advance-requests",
		fmt.Sprintf(`{"employeeId":%d,"amount":"50.00","reason":"rent"}`, employeeID), fiber.StatusCreated)

	notices, err := s.App.UserService.ListNotifications(context.Background(), employeeID)
	s.Require().NoError(err)
	s.Require().Len(notices, 2)
	s.Equal("Your salary advance was rejected", notices[0].Subject)
}

func TestPostgresFlowTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Postgres flow in short mode")
	}
	suite.Run(t, &PostgresFlowTestSuite{E2ETestSuite: testutils.E2ETestSuite{UsePostgres: true}})
}
