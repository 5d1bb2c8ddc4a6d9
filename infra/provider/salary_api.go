package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/shopspring/decimal"
)

// SalaryAPIProvider fetches salary info from the user service over HTTP.
type SalaryAPIProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// salaryInfoResponse is the user service body. The data may arrive wrapped
// in the standard {status, message, data} envelope or bare.
type salaryInfoResponse struct {
	Data          json.RawMessage `json:"data"`
	EmployeeID    uint            `json:"employeeId"`
	MonthlySalary decimal.Decimal `json:"monthlySalary"`
	EarnedAmount  decimal.Decimal `json:"earnedAmount"`
	Currency      string          `json:"currency"`
	AsOf          time.Time       `json:"asOf"`
}

// NewSalaryAPIProvider creates a provider from config.
func NewSalaryAPIProvider(cfg *config.SalaryProvider, logger *slog.Logger) *SalaryAPIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &SalaryAPIProvider{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger.With("provider", "salary-api"),
	}
}

// GetSalaryInfo calls GET {baseURL}/api/employees/{id}/salary-info.
func (p *SalaryAPIProvider) GetSalaryInfo(ctx context.Context, employeeID uint) (*user.SalaryInfo, error) {
	url := fmt.Sprintf("%s/api/employees/%d/salary-info", p.baseURL, employeeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("Salary provider request failed", "employee_id", employeeID, "error", err)
		return nil, fmt.Errorf("%w: salary provider: %v", domain.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w for employee %d", provider.ErrSalaryNotFound, employeeID)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.logger.Error("Salary provider returned error status",
			"employee_id", employeeID, "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: salary provider returned status %d",
			domain.ErrDependencyUnavailable, resp.StatusCode)
	}

	var body salaryInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode salary info: %v", domain.ErrDependencyUnavailable, err)
	}
	if len(body.Data) > 0 && string(body.Data) != "null" {
		var inner salaryInfoResponse
		if err := json.Unmarshal(body.Data, &inner); err != nil {
			return nil, fmt.Errorf("%w: decode salary info: %v", domain.ErrDependencyUnavailable, err)
		}
		body = inner
	}

	info := &user.SalaryInfo{
		EmployeeID:    employeeID,
		MonthlySalary: body.MonthlySalary,
		EarnedAmount:  body.EarnedAmount,
		Currency:      body.Currency,
		AsOf:          body.AsOf,
	}
	p.logger.Debug("Salary info fetched", "employee_id", employeeID, "earned_amount", info.EarnedAmount)
	return info, nil
}

var _ provider.SalaryProvider = (*SalaryAPIProvider)(nil)
