package repayment_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/amirasaad/payadvance/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type RepaymentTestSuite struct {
	testutils.E2ETestSuite
	employeeID     uint
	disbursementID uint
}

// SetupTest walks an advance of 100.00 to a completed disbursement owing 102.00.
func (s *RepaymentTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.employeeID = s.Employee("31000.00")
	created := s.Data(http.MethodPost, "/api/advance-requests",
		fmt.Sprintf(`{"employeeId":%d,"amount":"100.00","reason":"rent"}`, s.employeeID), fiber.StatusCreated)
	advanceID := testutils.ID(created)
	s.Data(http.MethodPatch, fmt.Sprintf("/api/advance-requests/%d/status", advanceID),
		`{"status":"APPROVED","approvedBy":1}`, fiber.StatusOK)
	s.Dispatch()

	d := s.Data(http.MethodGet, fmt.Sprintf("/api/disbursements/advance-request/%d", advanceID), "", fiber.StatusOK)
	s.disbursementID = testutils.ID(d)
	s.Data(http.MethodPost, fmt.Sprintf("/api/disbursements/%d/process", s.disbursementID), "", fiber.StatusOK)
	s.Dispatch()
}

func (s *RepaymentTestSuite) repay(amount string, wantStatus int) map[string]any {
	body := fmt.Sprintf(`{"disbursementId":%d,"amount":%q,"paymentMethod":"PAYROLL_DEDUCTION"}`, s.disbursementID, amount)
	return s.Data(http.MethodPost, "/api/repayments", body, wantStatus)
}

func (s *RepaymentTestSuite) TestCreateAndProcess() {
	r := s.repay("51.00", fiber.StatusCreated)
	s.Equal("PENDING", r["status"])
	s.Equal(float64(s.employeeID), r["employeeId"])

	processed := s.Data(http.MethodPost, fmt.Sprintf("/api/repayments/%d/process", testutils.ID(r)), "", fiber.StatusOK)
	s.Equal("COMPLETED", processed["status"])
	s.NotEmpty(processed["transactionReference"])
}

func (s *RepaymentTestSuite) TestBalanceIsEnforced() {
	s.repay("51.00", fiber.StatusCreated)
	s.repay("51.01", fiber.StatusBadRequest)
	s.repay("51.00", fiber.StatusCreated)
	s.repay("0.01", fiber.StatusBadRequest)
}

func (s *RepaymentTestSuite) TestFailedRepaymentFreesBalance() {
	r := s.repay("102.00", fiber.StatusCreated)
	path := fmt.Sprintf("/api/repayments/%d/status", testutils.ID(r))
	s.Data(http.MethodPatch, path, `{"status":"PROCESSING"}`, fiber.StatusOK)
	failed := s.Data(http.MethodPatch, path, `{"status":"FAILED","failureReason":"insufficient funds"}`, fiber.StatusOK)
	s.Equal("insufficient funds", failed["failureReason"])

	s.repay("102.00", fiber.StatusCreated)
}

func (s *RepaymentTestSuite) TestCreateVariants() {
	testCases := []struct {
		desc       string
		body       string
		wantStatus int
	}{
		{
			desc:       "unknown disbursement",
			body:       `{"disbursementId":424242,"amount":"1.00","paymentMethod":"CARD"}`,
			wantStatus: fiber.StatusNotFound,
		},
		{
			desc:       "other employee",
			body:       fmt.Sprintf(`{"disbursementId":%d,"employeeId":%d,"amount":"1.00","paymentMethod":"CARD"}`, s.disbursementID, s.employeeID+1000),
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "missing payment method",
			body:       fmt.Sprintf(`{"disbursementId":%d,"amount":"1.00"}`, s.disbursementID),
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			resp := s.MakeRequest(http.MethodPost, "/api/repayments", tc.body, "")
			defer resp.Body.Close() //nolint:errcheck
			s.Equal(tc.wantStatus, resp.StatusCode)
		})
	}
}

func (s *RepaymentTestSuite) TestLookups() {
	s.repay("10.00", fiber.StatusCreated)

	for _, path := range []string{
		fmt.Sprintf("/api/repayments/disbursement/%d", s.disbursementID),
		fmt.Sprintf("/api/repayments/employee/%d", s.employeeID),
	} {
		resp := s.MakeRequest(http.MethodGet, path, "", "")
		s.Equal(fiber.StatusOK, resp.StatusCode, path)
		_ = resp.Body.Close()
	}

	resp := s.MakeRequest(http.MethodGet, "/api/repayments/424242", "", "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
}

func TestRepaymentTestSuite(t *testing.T) {
	suite.Run(t, new(RepaymentTestSuite))
}
