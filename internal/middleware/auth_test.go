package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pizza-nz/food-ordering/internal/models"
	"github.com/pizza-nz/food-ordering/internal/service"
	"github.com/pizza-nz/food-ordering/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(t *testing.T) (*service.AuthService, *gin.Engine, *bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewStore()
	auth := service.NewAuthService(store.Users(), service.JWTConfig{Secret: "test-secret", ExpiresIn: 60})
	for _, u := range []models.User{
		{Nickname: "owner1", Role: models.RoleProprietor},
		{Nickname: "diner1", Role: models.RoleCustomer},
	} {
		_, err := store.Users().Create(context.Background(), u)
		require.NoError(t, err)
	}

	called := false
	router := gin.New()
	router.GET("/owner", RequireRole(auth, models.RoleProprietor, testutil.DiscardLogger()), func(c *gin.Context) {
		called = true
		user, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, user.Nickname)
	})
	return auth, router, &called
}

func token(t *testing.T, auth *service.AuthService, nickname string) string {
	t.Helper()
	tok, err := auth.IssueToken(nickname)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRequireRole(t *testing.T) {
	auth, router, called := setupAuth(t)

	tests := []struct {
		name           string
		header         string
		cookie         string
		expectedStatus int
		expectedCalled bool
	}{
		{"proprietor via header", token(t, auth, "owner1"), "", http.StatusOK, true},
		{"proprietor via cookie", "", token(t, auth, "owner1"), http.StatusOK, true},
		{"customer is forbidden", token(t, auth, "diner1"), "", http.StatusForbidden, false},
		{"no credential", "", "", http.StatusUnauthorized, false},
		{"malformed credential", "Token abc", "", http.StatusUnauthorized, false},
		{"unknown user", token(t, auth, "ghost1"), "", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*called = false
			req := httptest.NewRequest(http.MethodGet, "/owner", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CredentialCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCalled, *called)
			if tt.expectedCalled {
				assert.Equal(t, "owner1", w.Body.String())
			}
		})
	}
}
