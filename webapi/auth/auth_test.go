package auth_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/amirasaad/payadvance/webapi/common"
	"github.com/amirasaad/payadvance/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
)

type AuthTestSuite struct {
	testutils.E2ETestSuite
	userID uint
	email  string
}

func (s *AuthTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.userID, s.email = s.RegisterUser("EMPLOYER")
}

func (s *AuthTestSuite) TestLoginRoute_BadRequest() {
	resp := s.MakeRequest(http.MethodPost, "/api/users/login", `{"email":123}`, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *AuthTestSuite) TestLoginRoute_Unauthorized() {
	resp := s.MakeRequest(http.MethodPost, "/api/users/login", `{"email":"nonexistent@example.com","password":"password"}`, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *AuthTestSuite) TestLoginRoute_InvalidPassword() {
	body := fmt.Sprintf(`{"email":%q,"password":"wrongpassword"}`, s.email)
	resp := s.MakeRequest(http.MethodPost, "/api/users/login", body, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *AuthTestSuite) TestLoginRoute_Success() {
	body := fmt.Sprintf(`{"email":%q,"password":"password123"}`, s.email)
	resp := s.MakeRequest(http.MethodPost, "/api/users/login", body, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var response common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	data, ok := response.Data.(map[string]any)
	s.Require().True(ok)
	raw, _ := data["token"].(string)
	s.Require().NotEmpty(raw)

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(testutils.JwtSecret), nil
	})
	s.Require().NoError(err)
	s.Equal(fmt.Sprint(s.userID), claims["user_id"])
	s.Equal("EMPLOYER", claims["role"])
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
