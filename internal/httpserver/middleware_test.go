package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectboard/internal/model"
	"projectboard/internal/service"
	"projectboard/internal/util"
)

type stubResolver struct {
	user *model.User
	err  error
}

func (s stubResolver) ResolveUser(_ context.Context, _ int) (*model.User, error) {
	return s.user, s.err
}

func authProbe(resolver UserResolver, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(secret, resolver))
	r.GET("/probe", func(c *gin.Context) {
		u, _ := c.Get("user")
		c.JSON(http.StatusOK, gin.H{"id": u.(*model.User).ID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	alice := &model.User{ID: 7, Name: "Alice", Email: "alice@example.com"}

	validToken, err := util.GenerateJWT(alice.ID, secret)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		resolver   UserResolver
		wantStatus int
	}{
		{"missing token", "", stubResolver{user: alice}, http.StatusUnauthorized},
		{"malformed token", "Bearer garbage", stubResolver{user: alice}, http.StatusUnauthorized},
		{"user no longer exists", "Bearer " + validToken, stubResolver{err: service.ErrNotFound}, http.StatusUnauthorized},
		{"valid token", "Bearer " + validToken, stubResolver{user: alice}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authProbe(tt.resolver, secret)

			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"id": 7}`, w.Body.String())
			}
		})
	}
}

func TestRequestIDHonorsUpstream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "upstream-id", w.Header().Get("X-Request-ID"))

	// generated when absent
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
