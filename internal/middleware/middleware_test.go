package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodgram_backend/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.TokenManager, auth.RevocationStore) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	store := auth.NewMemoryRevocationStore()
	policy, err := auth.NewPolicy()
	require.NoError(t, err)

	authn := NewAuthenticator(tokens, store)
	r := gin.New()
	r.Use(RequestIDMiddleware(), authn.OptionalAuth())
	r.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.POST("/recipes", Authorize(policy, auth.ResourceRecipe, auth.ActionCreate, auth.OwnerAny), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r, tokens, store
}

func do(r http.Handler, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOptionalAuthAcceptsBothSchemes(t *testing.T) {
	r, tokens, _ := newAuthRouter(t)
	token, _, err := tokens.GenerateToken(7, "chef")
	require.NoError(t, err)

	for _, scheme := range []string{"Token ", "Bearer "} {
		w := do(r, http.MethodGet, "/public", scheme+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
	}

	w := do(r, http.MethodGet, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestOptionalAuthRejectsBadTokens(t *testing.T) {
	r, tokens, store := newAuthRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/public", "Token garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/public", "Basic abc").Code)

	token, claims, err := tokens.GenerateToken(7, "chef")
	require.NoError(t, err)
	require.NoError(t, store.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/public", "Token "+token).Code)
}

func TestRequireAuthAndAuthorize(t *testing.T) {
	r, tokens, _ := newAuthRouter(t)
	token, _, err := tokens.GenerateToken(7, "chef")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/private", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/private", "Token "+token).Code)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/recipes", "").Code)
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/recipes", "Token "+token).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(31 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	w := do(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
