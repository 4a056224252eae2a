package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskfan/internal/authz"
	"taskfan/internal/middleware"
	"taskfan/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authTestRouter(captured *authz.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", middleware.AuthRequired(testSecret), func(c *gin.Context) {
		actor, ok := middleware.CurrentActor(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no actor"})
			return
		}
		*captured = actor
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	var actor authz.Actor
	router := authTestRouter(&actor)

	userID := uuid.Must(uuid.NewV4())
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    string(models.RoleDeveloper),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, actor.ID)
	assert.Equal(t, models.RoleDeveloper, actor.Role)
}

func TestAuthRequiredRejections(t *testing.T) {
	var actor authz.Actor
	router := authTestRouter(&actor)

	userID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer notatoken"},
		{
			"wrong secret",
			"Bearer " + signToken(t, "other-secret", jwt.MapClaims{
				"user_id": userID.String(),
				"role":    string(models.RoleAdmin),
				"exp":     time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			"expired",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"user_id": userID.String(),
				"role":    string(models.RoleAdmin),
				"exp":     time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			"unknown role",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"user_id": userID.String(),
				"role":    "superuser",
				"exp":     time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			"missing user id",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"role": string(models.RoleAdmin),
				"exp":  time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
