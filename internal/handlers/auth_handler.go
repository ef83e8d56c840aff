package handlers

import (
	"net/http"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/middleware"
	"foodgram_backend/internal/services"
	"foodgram_backend/internal/services/dto"
	"foodgram_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService  services.AuthService
	loginLimiter gin.HandlerFunc
}

// NewAuthHandler builds the token endpoints. loginLimiter may be nil.
func NewAuthHandler(base *BaseHandler, authService services.AuthService, loginLimiter gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  base,
		authService:  authService,
		loginLimiter: loginLimiter,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, policy *auth.Policy) {
	token := rg.Group("/auth/token")
	{
		login := []gin.HandlerFunc{middleware.Authorize(policy, auth.ResourceToken, auth.ActionCreate, auth.OwnerAny)}
		if h.loginLimiter != nil {
			login = append([]gin.HandlerFunc{h.loginLimiter}, login...)
		}
		token.POST("/login", append(login, h.Login)...)

		token.POST("/logout",
			middleware.Authorize(policy, auth.ResourceToken, auth.ActionDelete, auth.OwnerSelf),
			h.Logout,
		)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication credentials were not provided"))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
