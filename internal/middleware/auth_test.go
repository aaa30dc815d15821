package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func token(t *testing.T, secret string, role model.UserRole, ttl time.Duration) string {
	t.Helper()
	u := &model.User{Email: "a@example.com", Role: role}
	u.ID = 42
	s, err := util.GenerateJWT(u, secret, ttl)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return "Bearer " + s
}

func TestAuthAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret"}}

	r := gin.New()
	api := r.Group("/api", AuthMiddleware(cfg))
	api.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, "%d", util.GetUserFromContext(c).UserID)
	})
	api.GET("/admin", RoleMiddleware(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no token", "/api/me", "", http.StatusUnauthorized},
		{"bad signature", "/api/me", token(t, "other", model.RoleUser, time.Hour), http.StatusUnauthorized},
		{"expired", "/api/me", token(t, "secret", model.RoleUser, -time.Minute), http.StatusUnauthorized},
		{"valid", "/api/me", token(t, "secret", model.RoleUser, time.Hour), http.StatusOK},
		{"user on admin route", "/api/admin", token(t, "secret", model.RoleUser, time.Hour), http.StatusForbidden},
		{"admin", "/api/admin", token(t, "secret", model.RoleAdmin, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("code = %d, want %d", w.Code, tt.want)
			}
			if tt.name == "valid" && w.Body.String() != "42" {
				t.Errorf("user id = %s", w.Body.String())
			}
		})
	}
}
