package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "accesssim"
	testAudience = "accesssim-api"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(expiry time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user1",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: "operator",
	}
}

func newTestMiddleware() *AuthMiddleware {
	validator := NewHMACValidator(testSecret, testIssuer, testAudience)
	return NewAuthMiddleware(validator, zap.NewNop())
}

func TestRequireAuth_ValidToken(t *testing.T) {
	m := newTestMiddleware()

	var gotClaims *Claims
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(time.Hour)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "user1", gotClaims.Subject)
	assert.Equal(t, "operator", gotClaims.Role)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	m := newTestMiddleware()
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	m := newTestMiddleware()
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", validClaims(time.Hour)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	m := newTestMiddleware()
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(-time.Hour)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHMACValidator_WrongIssuer(t *testing.T) {
	validator := NewHMACValidator(testSecret, testIssuer, testAudience)

	claims := validClaims(time.Hour)
	claims.Issuer = "someone-else"

	_, err := validator.ValidateToken(context.Background(), signToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestHMACValidator_Expired(t *testing.T) {
	validator := NewHMACValidator(testSecret, testIssuer, testAudience)

	_, err := validator.ValidateToken(context.Background(), signToken(t, testSecret, validClaims(-time.Minute)))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, extractToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, extractToken(req))

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", extractToken(req))
}
