// Package testutils builds a fully wired HTTP app for route tests.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/amirasaad/payadvance/infra"
	infra_eventbus "github.com/amirasaad/payadvance/infra/eventbus"
	infra_provider "github.com/amirasaad/payadvance/infra/provider"
	"github.com/amirasaad/payadvance/internal/fixtures/fakes"
	"github.com/amirasaad/payadvance/internal/testutils"
	"github.com/amirasaad/payadvance/pkg/app"
	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/repository"
	"github.com/amirasaad/payadvance/webapi"
	"github.com/amirasaad/payadvance/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// JwtSecret signs the tokens issued by test apps.
const JwtSecret = "test-secret"

// Config returns an App config with every service family enabled and
// rate limiting off.
func Config() *config.App {
	return &config.App{
		Env:      "test",
		Services: "user,advance,disbursement,repayment",
		Auth:     &config.Auth{Jwt: &config.Jwt{Secret: JwtSecret, Expiry: time.Hour}},
		Outbox:   &config.Outbox{BatchSize: 100, MaxAttempts: 5},
	}
}

// E2ETestSuite drives the HTTP API of an app on the in-memory store, the
// memory bus and the mock payment gateway. Each test gets a fresh app.
// Suites that set UsePostgres run on a Postgres container instead.
type E2ETestSuite struct {
	suite.Suite
	UsePostgres bool

	App     *app.App
	Fiber   *fiber.App
	Bus     *infra_eventbus.MemoryEventBus
	Gateway *infra_provider.MockPaymentGateway
	Uow     repository.UnitOfWork

	pgContainer *tcpostgres.PostgresContainer
	db          *gorm.DB
}

// SetupSuite starts Postgres when the suite asks for it.
func (s *E2ETestSuite) SetupSuite() {
	if !s.UsePostgres {
		return
	}
	testutils.SkipWithoutDocker(s.T())
	ctx := context.Background()

	pg, err := tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.pgContainer = pg

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	s.Require().NoError(infra.RunMigrations(s.db))
}

// TearDownSuite cleans up the test suite resources.
func (s *E2ETestSuite) TearDownSuite() {
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

// SetupTest wires a fresh app.
func (s *E2ETestSuite) SetupTest() {
	s.Build(Config())
}

// Build replaces the app with one wired from cfg.
func (s *E2ETestSuite) Build(cfg *config.App) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if s.db != nil {
		s.Uow = infra.NewUoW(s.db)
	} else {
		s.Uow = fakes.NewUoW()
	}
	s.Bus = infra_eventbus.NewWithMemory(log)
	s.Gateway = infra_provider.NewMockPaymentGateway()
	s.App = app.New(config.Deps{
		Uow:            s.Uow,
		EventBus:       s.Bus,
		PaymentGateway: s.Gateway,
		Logger:         log,
	}, cfg)
	s.Fiber = webapi.SetupApp(s.App)
}

// MakeRequest is a helper for making HTTP requests in tests.
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Fiber.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// Data performs a request, asserts the status and decodes the response
// data into a map.
func (s *E2ETestSuite) Data(method, path, body string, wantStatus int) map[string]any {
	resp := s.MakeRequest(method, path, body, "")
	defer resp.Body.Close() //nolint:errcheck
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().Equal(wantStatus, resp.StatusCode, "%s %s: %s", method, path, raw)

	var out common.Response
	s.Require().NoError(json.Unmarshal(raw, &out))
	data, _ := out.Data.(map[string]any)
	return data
}

// Dispatch drains the outbox through the bus.
func (s *E2ETestSuite) Dispatch() {
	s.App.DispatchOutbox(context.Background())
}

// RegisterUser registers a user with a random email and returns its ID and email.
func (s *E2ETestSuite) RegisterUser(role string) (uint, string) {
	email := fmt.Sprintf("user_%s@example.com", uuid.NewString()[:8])
	body := fmt.Sprintf(`{"email":%q,"password":"password123","firstName":"Test","lastName":"User","role":%q}`, email, role)
	data := s.Data(http.MethodPost, "/api/users/register", body, fiber.StatusCreated)
	return ID(data), email
}

// Employee registers an employer and an employee earning monthlySalary and
// returns the employee's user ID.
func (s *E2ETestSuite) Employee(monthlySalary string) uint {
	employerID, _ := s.RegisterUser("EMPLOYER")
	s.Data(http.MethodPost, "/api/employers",
		fmt.Sprintf(`{"userId":%d,"companyName":"Acme"}`, employerID), fiber.StatusCreated)

	employeeID, _ := s.RegisterUser("EMPLOYEE")
	s.Data(http.MethodPost, "/api/employees",
		fmt.Sprintf(`{"userId":%d,"employerId":%d,"monthlySalary":%q}`, employeeID, employerID, monthlySalary),
		fiber.StatusCreated)
	return employeeID
}

// Login returns a bearer token for email.
func (s *E2ETestSuite) Login(email string) string {
	data := s.Data(http.MethodPost, "/api/users/login",
		fmt.Sprintf(`{"email":%q,"password":"password123"}`, email), fiber.StatusOK)
	token, _ := data["token"].(string)
	s.Require().NotEmpty(token)
	return token
}

// ID reads the numeric id field of decoded response data.
func ID(data map[string]any) uint {
	id, _ := data["id"].(float64)
	return uint(id)
}
