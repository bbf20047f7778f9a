package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment-service/internal/auth"
	"investment-service/internal/config"
	"investment-service/internal/models"
)

var jwtCfg = config.JWTConfig{Secret: "middleware-secret", Expiry: time.Minute, Issuer: "test"}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	api := r.Group("/api", AuthRequired(jwtCfg))
	api.GET("/me", func(c *gin.Context) {
		a := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": a.UserID, "role": a.Role})
	})
	api.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "Bearer garbage").Code)

	token, _, err := auth.GenerateAccessToken(jwtCfg, 7, models.RoleClient)
	require.NoError(t, err)
	w := do(r, "/api/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"client"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	client, _, err := auth.GenerateAccessToken(jwtCfg, 7, models.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, "/api/admin", "Bearer "+client).Code)

	admin, _, err := auth.GenerateAccessToken(jwtCfg, 1, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(r, "/api/admin", "Bearer "+admin).Code)
}
