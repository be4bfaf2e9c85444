package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: 15 * time.Minute,
		Issuer:     "test-issuer",
	})
}

func newAuthedEngine(svc *auth.JWTService) *gin.Engine {
	engine := gin.New()
	engine.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: svc,
		SkipPaths:  []string{"/public"},
	}))
	engine.GET("/public", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	engine.GET("/private", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTUserID(c))
	})
	engine.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "admin ok")
	})
	return engine
}

func TestJWTSkipPaths(t *testing.T) {
	engine := newAuthedEngine(newTestJWTService())

	req := httptest.NewRequest("GET", "/public", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTMissingHeader(t *testing.T) {
	engine := newAuthedEngine(newTestJWTService())

	req := httptest.NewRequest("GET", "/private", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestJWTMalformedHeader(t *testing.T) {
	engine := newAuthedEngine(newTestJWTService())

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTValidToken(t *testing.T) {
	svc := newTestJWTService()
	engine := newAuthedEngine(svc)

	userID := uuid.New()
	token, _, err := svc.Issue(userID, "user@example.com", identity.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestJWTExpiredToken(t *testing.T) {
	expired := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: -time.Minute,
		Issuer:     "test-issuer",
	})
	engine := newAuthedEngine(newTestJWTService())

	token, _, err := expired.Issue(uuid.New(), "user@example.com", identity.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestJWTService()
	engine := newAuthedEngine(svc)

	adminToken, _, err := svc.Issue(uuid.New(), "admin@example.com", identity.RoleAdmin)
	require.NoError(t, err)
	customerToken, _, err := svc.Issue(uuid.New(), "user@example.com", identity.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
