package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohdFaizan63/Resume-Builder/internal/auth"
	"github.com/MohdFaizan63/Resume-Builder/internal/errcode"
)

func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	svc, err := auth.NewAuthService(
		pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
		pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub}),
		time.Minute, time.Hour,
	)
	require.NoError(t, err)
	return svc
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authService := newTestAuthService(t)
	pair, err := authService.GenerateTokenPair(42, "user")
	require.NoError(t, err)

	engine := gin.New()
	engine.GET("/private", AuthMiddleware(authService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetUint(UserIDKey), "role": c.GetString(UserRoleKey)})
	})
	engine.GET("/optional", OptionalAuthMiddleware(authService), func(c *gin.Context) {
		_, ok := c.Get(UserIDKey)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	unauthorized := fmt.Sprintf(`{"error":"unauthorized","code":%d}`, errcode.Unauthorized)
	cases := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"access token", "/private", "Bearer " + pair.AccessToken, http.StatusOK, `{"role":"user","user":42}`},
		{"lowercase scheme", "/private", "bearer " + pair.AccessToken, http.StatusOK, `{"role":"user","user":42}`},
		{"refresh token rejected", "/private", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, unauthorized},
		{"missing header", "/private", "", http.StatusUnauthorized, unauthorized},
		{"garbage", "/private", "Bearer abc.def.ghi", http.StatusUnauthorized, unauthorized},
		{"optional anonymous", "/optional", "", http.StatusOK, `{"authenticated":false}`},
		{"optional invalid", "/optional", "Bearer nope", http.StatusOK, `{"authenticated":false}`},
		{"optional valid", "/optional", "Bearer " + pair.AccessToken, http.StatusOK, `{"authenticated":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CorrelationIDMiddleware())
	engine.GET("/", func(c *gin.Context) {
		assert.Equal(t, GetCorrelationID(c), CorrelationIDFrom(c.Request.Context()))
		c.String(http.StatusOK, GetCorrelationID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlationIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlationIDHeader, strings.Repeat("a", maxCorrelationIDLen+1))
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Len(t, rec.Body.String(), 36)
	assert.Equal(t, rec.Body.String(), rec.Header().Get(correlationIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlationIDHeader, "abc\nforged=1")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Len(t, rec.Body.String(), 36)
}
