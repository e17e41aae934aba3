package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pizza-nz/food-ordering/internal/api"
	"github.com/pizza-nz/food-ordering/internal/middleware"
	"github.com/pizza-nz/food-ordering/internal/models"
	"github.com/pizza-nz/food-ordering/internal/service"
)

// UserHandler handles sign-up and sign-in
type UserHandler struct {
	authService *service.AuthService
	cookieAge   int
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler. The credential cookie lives
// as long as the token it carries.
func NewUserHandler(authService *service.AuthService, tokenMinutes int, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		cookieAge:   tokenMinutes * 60,
		logger:      logger,
	}
}

// SignUp handles POST /api/sign-up
func (h *UserHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": user})
}

// SignIn handles POST /api/sign-in. The credential is returned in the body
// and set as a cookie.
func (h *UserHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "invalid request body")
		return
	}

	token, err := h.authService.SignIn(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	credential := service.BearerScheme + " " + token
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CredentialCookie, credential, h.cookieAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "signed in",
		"data":    gin.H{"token": credential},
	})
}
