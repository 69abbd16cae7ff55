package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldpos/backend/internal/infrastructure/auth"
	"github.com/goldpos/backend/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-with-at-least-32-characters!",
		AccessTokenExpiration: expiration,
		Issuer:                "goldpos-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, userID uuid.UUID, permissions ...string) string {
	token, _, err := svc.GenerateToken(auth.GenerateTokenInput{
		UserID:      userID,
		Username:    "tester",
		Permissions: permissions,
	})
	require.NoError(t, err)
	return token
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetJWTUserID(c),
			"username": GetJWTUsername(c),
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/public/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func authErrorCode(t *testing.T, body []byte) string {
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.False(t, resp.Success)
	return resp.Error.Code
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	router := newAuthRouter(JWTAuthMiddleware(svc))

	t.Run("accepts a valid token and exposes claims", func(t *testing.T) {
		userID := uuid.New()
		token := issueToken(t, svc, userID, "manufacturing:read")

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, "tester", body["username"])
	})

	t.Run("rejects a missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "ERR_TOKEN_INVALID", authErrorCode(t, rec.Body.Bytes()))
	})

	t.Run("rejects a non-bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+"not-a-jwt")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "ERR_TOKEN_INVALID", authErrorCode(t, rec.Body.Bytes()))
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expiredSvc := newTestJWTService(-time.Minute)
		token := issueToken(t, expiredSvc, uuid.New())

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		rec := httptest.NewRecorder()
		newAuthRouter(JWTAuthMiddleware(expiredSvc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "ERR_TOKEN_EXPIRED", authErrorCode(t, rec.Body.Bytes()))
	})

	t.Run("skips configured paths", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("skips configured path prefixes", func(t *testing.T) {
		prefixRouter := newAuthRouter(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
			JWTService:       svc,
			SkipPathPrefixes: []string{"/public/"},
		}))

		req := httptest.NewRequest(http.MethodGet, "/public/ping", nil)
		rec := httptest.NewRecorder()
		prefixRouter.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invokes the OnError callback when configured", func(t *testing.T) {
		called := false
		cbRouter := newAuthRouter(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
			JWTService: svc,
			OnError: func(c *gin.Context, err error) {
				called = true
				c.AbortWithStatus(http.StatusTeapot)
			},
		}))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		cbRouter.ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}
