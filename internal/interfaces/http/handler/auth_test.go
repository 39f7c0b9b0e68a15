package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appidentity "github.com/meterly/backend/internal/application/identity"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/infrastructure/auth"
	"github.com/meterly/backend/internal/infrastructure/config"
	"github.com/meterly/backend/internal/interfaces/http/middleware"
)

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func setupAuthRouter(handler *AuthHandler, jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Auth routes (no JWT required for signup/login/refresh)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/signup", handler.Signup)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.RefreshToken)
	}

	// Protected auth routes (JWT required)
	protectedGroup := r.Group("/api/v1/auth")
	protectedGroup.Use(middleware.JWTAuthMiddleware(jwtService))
	{
		protectedGroup.POST("/logout", handler.Logout)
		protectedGroup.GET("/me", handler.GetCurrentUser)
	}

	return r
}

func createTestUserForHandler() *identity.User {
	user, _ := identity.NewUser("owner@example.com", "Password123")
	return user
}

func createAuthServiceForHandler(userRepo *MockUserRepository, jwtService *auth.JWTService) *appidentity.AuthService {
	return appidentity.NewAuthService(
		userRepo,
		jwtService,
		auth.NewInMemoryTokenBlacklist(),
		zap.NewNop(),
	)
}

func loginForToken(t *testing.T, router *gin.Engine) string {
	t.Helper()

	loginBody, _ := json.Marshal(LoginRequest{
		Email:    "owner@example.com",
		Password: "Password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	return token["access_token"].(string)
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("ExistsByEmail", mock.Anything, "owner@example.com").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	reqBody, _ := json.Marshal(SignupRequest{
		Email:    "owner@example.com",
		Password: "Password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.NotEmpty(t, token["refresh_token"])
	assert.Equal(t, "Bearer", token["token_type"])

	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "owner@example.com", userData["email"])
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("ExistsByEmail", mock.Anything, "owner@example.com").Return(true, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	reqBody, _ := json.Marshal(SignupRequest{
		Email:    "owner@example.com",
		Password: "Password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Signup_InvalidRequestBody(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader([]byte(`{"email":"not-an-email"}`)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByEmail", mock.Anything, "owner@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	reqBody, _ := json.Marshal(LoginRequest{
		Email:    "owner@example.com",
		Password: "Password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.NotEmpty(t, token["refresh_token"])
	assert.Equal(t, "Bearer", token["token_type"])

	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "owner@example.com", userData["email"])
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByEmail", mock.Anything, "owner@example.com").Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	reqBody, _ := json.Marshal(LoginRequest{
		Email:    "owner@example.com",
		Password: "WrongPassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_InvalidRequestBody(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByEmail", mock.Anything, "owner@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	// First login to obtain a refresh token
	loginBody, _ := json.Marshal(LoginRequest{
		Email:    "owner@example.com",
		Password: "Password123",
	})
	loginHttpReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	loginHttpReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	router.ServeHTTP(loginW, loginHttpReq)
	require.Equal(t, http.StatusOK, loginW.Code)

	var loginResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(loginW.Body.Bytes(), &loginResponse))
	loginToken := loginResponse["data"].(map[string]interface{})["token"].(map[string]interface{})
	refreshToken := loginToken["refresh_token"].(string)

	reqBody, _ := json.Marshal(RefreshTokenRequest{RefreshToken: refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response["success"].(bool))
	token := response["data"].(map[string]interface{})["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.NotEmpty(t, token["refresh_token"])
}

func TestAuthHandler_RefreshToken_InvalidToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	reqBody, _ := json.Marshal(RefreshTokenRequest{RefreshToken: "not-a-token"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByEmail", mock.Anything, "owner@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	accessToken := loginForToken(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Logged out successfully", data["message"])
}

func TestAuthHandler_Logout_Unauthorized(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GetCurrentUser_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByEmail", mock.Anything, "owner@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	router := setupAuthRouter(NewAuthHandler(authService), jwtService)

	accessToken := loginForToken(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response["success"].(bool))
	userData := response["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "owner@example.com", userData["email"])
}
