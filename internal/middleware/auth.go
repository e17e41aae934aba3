package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/pizza-nz/food-ordering/internal/api"
	"github.com/pizza-nz/food-ordering/internal/models"
)

// CredentialCookie is the cookie set at sign-in that may carry the credential
const CredentialCookie = "authorization"

const userKey = "user"

// Authorizer resolves a raw credential to a user holding role
type Authorizer interface {
	Authorize(ctx context.Context, credential string, role models.Role) (*models.User, error)
}

// RequireRole rejects requests whose credential does not resolve to a user
// with role. On success the user is available through CurrentUser.
func RequireRole(auth Authorizer, role models.Role, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authorize(c.Request.Context(), Credential(c), role)
		if err != nil {
			api.RespondError(c, logger, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// Credential returns the Authorization header, falling back to the cookie
func Credential(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return header
	}
	cookie, err := c.Cookie(CredentialCookie)
	if err != nil {
		return ""
	}
	return cookie
}

// CurrentUser returns the user stored by RequireRole
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
