package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
	"britta/internal/handler"
	"britta/internal/middleware"
	"britta/internal/service"
	"britta/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setAuthContext seeds the gin context the way AuthMiddleware does.
func setAuthContext(c *gin.Context, userID uuid.UUID) {
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyEmail, "anna@laddel.se")
}

// setCompanyContext seeds the active company the way CompanyGuard does.
func setCompanyContext(c *gin.Context, company *domain.Company) {
	c.Set(middleware.ContextKeyCompany, company)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	user := &domain.User{
		ID:       uuid.New(),
		Email:    "anna@laddel.se",
		FullName: "Anna Andersson",
		IsActive: true,
	}
	tokens := &service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}

	mockAuthSvc.On("Register", mock.Anything, mock.AnythingOfType("service.RegisterInput")).
		Return(user, tokens, nil)

	body, _ := json.Marshal(map[string]string{
		"email":     "anna@laddel.se",
		"password":  "hemligt123",
		"full_name": "Anna Andersson",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	mockAuthSvc.AssertExpectations(t)
}

func TestAuthHandler_Register_ValidationError(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	body, _ := json.Marshal(map[string]string{
		"email": "anna@laddel.se",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuthSvc.AssertNumberOfCalls(t, "Register", 0)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	mockAuthSvc.On("Register", mock.Anything, mock.AnythingOfType("service.RegisterInput")).
		Return(nil, nil, domain.ErrDuplicateEmail)

	body, _ := json.Marshal(map[string]string{
		"email":     "anna@laddel.se",
		"password":  "hemligt123",
		"full_name": "Anna Andersson",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "DUPLICATE_EMAIL", resp.Error.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	tokens := &service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}

	mockAuthSvc.On("Login", mock.Anything, service.LoginInput{
		Email:    "anna@laddel.se",
		Password: "hemligt123",
	}).Return(tokens, nil)

	body, _ := json.Marshal(map[string]string{
		"email":    "anna@laddel.se",
		"password": "hemligt123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	mockAuthSvc.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	mockAuthSvc.On("Login", mock.Anything, mock.AnythingOfType("service.LoginInput")).
		Return(nil, domain.ErrInvalidCredentials)

	body, _ := json.Marshal(map[string]string{
		"email":    "anna@laddel.se",
		"password": "felaktigt123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
}

func TestAuthHandler_Login_ShortPassword(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	body, _ := json.Marshal(map[string]string{
		"email":    "anna@laddel.se",
		"password": "kort",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuthSvc.AssertNumberOfCalls(t, "Login", 0)
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	tokens := &service.TokenPair{AccessToken: "fresh-access", RefreshToken: "fresh-refresh"}

	mockAuthSvc.On("RefreshToken", mock.Anything, "old-refresh").Return(tokens, nil)

	body, _ := json.Marshal(map[string]string{"refresh_token": "old-refresh"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.RefreshToken(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockAuthSvc.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	mockAuthSvc.On("RefreshToken", mock.Anything, "expired").
		Return(nil, domain.ErrUnauthorized)

	body, _ := json.Marshal(map[string]string{"refresh_token": "expired"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.RefreshToken(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me_Success(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	userID := uuid.New()
	user := &domain.User{ID: userID, Email: "anna@laddel.se", FullName: "Anna Andersson"}

	mockAuthSvc.On("Me", mock.Anything, userID).Return(user, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/auth/me", http.NoBody)
	setAuthContext(c, userID)

	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	mockAuthSvc.AssertExpectations(t)
}

func TestAuthHandler_Me_NoAuthContext(t *testing.T) {
	mockAuthSvc := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuthSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/auth/me", http.NoBody)

	h.Me(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthSvc.AssertNumberOfCalls(t, "Me", 0)
}
