package handlers

import (
	"net/http"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/middleware"
	"foodgram_backend/internal/services"
	"foodgram_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService         services.UserService
	subscriptionService services.SubscriptionService
}

func NewUserHandler(base *BaseHandler, userService services.UserService, subscriptionService services.SubscriptionService) *UserHandler {
	return &UserHandler{
		BaseHandler:         base,
		userService:         userService,
		subscriptionService: subscriptionService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, policy *auth.Policy) {
	users := rg.Group("/users")
	{
		users.POST("", middleware.Authorize(policy, auth.ResourceUser, auth.ActionCreate, auth.OwnerAny), h.Register)
		users.GET("", middleware.Authorize(policy, auth.ResourceUser, auth.ActionRead, auth.OwnerAny), h.ListUsers)
		users.GET("/:id", middleware.Authorize(policy, auth.ResourceUser, auth.ActionRead, auth.OwnerAny), h.GetUser)
	}

	// Routes acting on the requester's own profile
	me := rg.Group("/users")
	{
		me.GET("/me", middleware.Authorize(policy, auth.ResourceProfile, auth.ActionRead, auth.OwnerSelf), h.GetMe)
		me.PUT("/me/avatar", middleware.Authorize(policy, auth.ResourceProfile, auth.ActionUpdate, auth.OwnerSelf), h.SetAvatar)
		me.DELETE("/me/avatar", middleware.Authorize(policy, auth.ResourceProfile, auth.ActionUpdate, auth.OwnerSelf), h.DeleteAvatar)
		me.POST("/set_password", middleware.Authorize(policy, auth.ResourceProfile, auth.ActionUpdate, auth.OwnerSelf), h.SetPassword)
	}

	subs := rg.Group("/users")
	{
		subs.GET("/subscriptions", middleware.Authorize(policy, auth.ResourceSubscription, auth.ActionRead, auth.OwnerAny), h.ListSubscriptions)
		subs.POST("/:id/subscribe", middleware.Authorize(policy, auth.ResourceSubscription, auth.ActionCreate, auth.OwnerAny), h.Subscribe)
		subs.DELETE("/:id/subscribe", middleware.Authorize(policy, auth.ResourceSubscription, auth.ActionDelete, auth.OwnerAny), h.Unsubscribe)
	}
}

// --- Public handlers ---

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), h.GetDB(c), middleware.GetUserID(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPage(c, users, total, page, pageSize))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), h.GetDB(c), middleware.GetUserID(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// --- Profile handlers ---

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetMe(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.AvatarRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.userService.SetAvatar(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteAvatar(c.Request.Context(), h.GetDB(c), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.SetPassword(c.Request.Context(), h.GetDB(c), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Subscription handlers ---

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	recipesLimit, err := ParseRecipesLimit(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	page, pageSize := ParsePagination(c)

	authors, total, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), h.GetDB(c), userID, page, pageSize, recipesLimit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPage(c, authors, total, page, pageSize))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	authorID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	recipesLimit, err := ParseRecipesLimit(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	author, err := h.subscriptionService.Subscribe(c.Request.Context(), h.GetDB(c), userID, authorID, recipesLimit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, author)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	authorID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), h.GetDB(c), userID, authorID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
