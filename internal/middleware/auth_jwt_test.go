package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hamono/internal/config"
	"hamono/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return signed
}

func validClaims(userID int64, role string, tv int) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"tv":   tv,
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	}
}

// ミドルウェアを通して最後に到達したかを見る
func runWithAuth(t *testing.T, authz string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := AuthJWT(config.Config{JWTSecret: testSecret})(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	assert.NoError(t, err)
	return rec, c, reached
}

func TestAuthJWT_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, validClaims(1, string(model.RoleUser), 3))

	rec, c, reached := runWithAuth(t, "Bearer "+token)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)

	// contextに入る
	assert.Equal(t, int64(1), c.Get(CtxUserIDKey))
	assert.Equal(t, string(model.RoleUser), c.Get(CtxUserRoleKey))
	assert.Equal(t, 3, c.Get(CtxTokenVersionKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, _, reached := runWithAuth(t, "")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", validClaims(1, string(model.RoleUser), 0))

	rec, _, reached := runWithAuth(t, "Bearer "+token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	claims := validClaims(1, string(model.RoleUser), 0)
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, testSecret, claims)

	rec, _, reached := runWithAuth(t, "Bearer "+token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	token := signToken(t, testSecret, validClaims(1, string(model.RoleUser), 0))

	rec, _, reached := runWithAuth(t, "Basic "+token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// TokenVersionGuard
// =====================

type stubUserRepo struct {
	mock.Mock
}

func (m *stubUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *stubUserRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *stubUserRepo) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *stubUserRepo) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *stubUserRepo) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	us, _ := args.Get(0).([]model.User)
	return us, args.Get(1).(int64), args.Error(2)
}

func runTokenVersionGuard(t *testing.T, repo *stubUserRepo, userID int64, tv int) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CtxUserIDKey, userID)
	c.Set(CtxTokenVersionKey, tv)

	reached := false
	h := TokenVersionGuard(repo)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	return rec, reached
}

func TestTokenVersionGuard_Match(t *testing.T) {
	repo := new(stubUserRepo)
	repo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID: 1, TokenVersion: 3, IsActive: true,
	}, nil)

	rec, reached := runTokenVersionGuard(t, repo, 1, 3)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ログアウト後（tvが進んだ）トークンは401
func TestTokenVersionGuard_Mismatch(t *testing.T) {
	repo := new(stubUserRepo)
	repo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID: 1, TokenVersion: 4, IsActive: true,
	}, nil)

	rec, reached := runTokenVersionGuard(t, repo, 1, 3)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 停止中のユーザーも弾く
func TestTokenVersionGuard_SuspendedUser(t *testing.T) {
	repo := new(stubUserRepo)
	repo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID: 1, TokenVersion: 3, IsActive: false,
	}, nil)

	rec, reached := runTokenVersionGuard(t, repo, 1, 3)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// AdminRoleGuard
// =====================

func runAdminGuard(t *testing.T, role interface{}) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set(CtxUserRoleKey, role)
	}

	reached := false
	h := AdminRoleGuard()(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	return rec, reached
}

func TestAdminRoleGuard_Admin(t *testing.T) {
	rec, reached := runAdminGuard(t, string(model.RoleAdmin))
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard_User(t *testing.T) {
	rec, reached := runAdminGuard(t, string(model.RoleUser))
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleGuard_NoRole(t *testing.T) {
	rec, reached := runAdminGuard(t, nil)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
