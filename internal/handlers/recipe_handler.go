package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/middleware"
	"foodgram_backend/internal/models"
	"foodgram_backend/internal/services"
	"foodgram_backend/internal/services/dto"
	"foodgram_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	*BaseHandler
	recipeService       services.RecipeService
	membershipService   services.MembershipService
	shoppingListService services.ShoppingListService
	baseURL             string
}

// NewRecipeHandler builds the recipe endpoints. baseURL prefixes short
// links; when empty the request host is used.
func NewRecipeHandler(
	base *BaseHandler,
	recipeService services.RecipeService,
	membershipService services.MembershipService,
	shoppingListService services.ShoppingListService,
	baseURL string,
) *RecipeHandler {
	return &RecipeHandler{
		BaseHandler:         base,
		recipeService:       recipeService,
		membershipService:   membershipService,
		shoppingListService: shoppingListService,
		baseURL:             strings.TrimRight(baseURL, "/"),
	}
}

func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup, policy *auth.Policy) {
	read := middleware.Authorize(policy, auth.ResourceRecipe, auth.ActionRead, auth.OwnerAny)

	recipes := rg.Group("/recipes")
	{
		recipes.GET("", read, h.ListRecipes)
		recipes.GET("/:id", read, h.GetRecipe)
		recipes.GET("/:id/get-link", read, h.GetLink)

		recipes.POST("", middleware.Authorize(policy, auth.ResourceRecipe, auth.ActionCreate, auth.OwnerAny), h.CreateRecipe)
		// The service re-checks that the requester is the author.
		recipes.PATCH("/:id", middleware.Authorize(policy, auth.ResourceRecipe, auth.ActionUpdate, auth.OwnerSelf), h.PatchRecipe)
		recipes.PUT("/:id", middleware.Authorize(policy, auth.ResourceRecipe, auth.ActionUpdate, auth.OwnerSelf), h.PutRecipe)
		recipes.DELETE("/:id", middleware.Authorize(policy, auth.ResourceRecipe, auth.ActionDelete, auth.OwnerSelf), h.DeleteRecipe)
	}

	members := rg.Group("/recipes")
	{
		members.POST("/:id/favorite", middleware.Authorize(policy, auth.ResourceFavorite, auth.ActionCreate, auth.OwnerAny), h.addTo(models.KindFavorite))
		members.DELETE("/:id/favorite", middleware.Authorize(policy, auth.ResourceFavorite, auth.ActionDelete, auth.OwnerAny), h.removeFrom(models.KindFavorite))
		members.POST("/:id/shopping_cart", middleware.Authorize(policy, auth.ResourceShoppingCart, auth.ActionCreate, auth.OwnerAny), h.addTo(models.KindShoppingCart))
		members.DELETE("/:id/shopping_cart", middleware.Authorize(policy, auth.ResourceShoppingCart, auth.ActionDelete, auth.OwnerAny), h.removeFrom(models.KindShoppingCart))
		members.GET("/download_shopping_cart", middleware.Authorize(policy, auth.ResourceShoppingCart, auth.ActionRead, auth.OwnerAny), h.DownloadShoppingCart)
	}
}

// RegisterShortLinks mounts the short-link redirect outside the API prefix.
func (h *RecipeHandler) RegisterShortLinks(r gin.IRouter) {
	r.GET("/s/:code", h.ResolveShortLink)
}

// --- Read handlers ---

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var query dto.RecipeListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), h.GetDB(c), middleware.GetUserID(c), &query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPage(c, recipes, total, page, pageSize))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), h.GetDB(c), middleware.GetUserID(c), recipeID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	recipeID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	code, err := h.recipeService.ShortCode(c.Request.Context(), h.GetDB(c), recipeID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ShortLinkResponse{ShortLink: h.absoluteURL(c, "/s/"+code)})
}

func (h *RecipeHandler) ResolveShortLink(c *gin.Context) {
	recipeID, err := h.recipeService.ResolveShortCode(c.Request.Context(), h.GetDB(c), c.Param("code"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/recipes/%d", recipeID))
}

// --- Write handlers ---

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRecipeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	h.updateRecipe(c, false)
}

// PutRecipe is a full replacement: every scalar field must be present.
func (h *RecipeHandler) PutRecipe(c *gin.Context) {
	h.updateRecipe(c, true)
}

func (h *RecipeHandler) updateRecipe(c *gin.Context, full bool) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	recipeID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	var req dto.UpdateRecipeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if full {
		if missing := req.MissingFields(); len(missing) > 0 {
			apperrors.HandleError(c, apperrors.ValidationError(missing))
			return
		}
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), h.GetDB(c), userID, recipeID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	recipeID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), h.GetDB(c), userID, recipeID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Favorites and shopping cart ---

func (h *RecipeHandler) addTo(kind models.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := h.GetAndAuthorizeUserID(c)
		if !ok {
			return
		}
		recipeID, err := ParseParamID(c, "id")
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}

		recipe, err := h.membershipService.Add(c.Request.Context(), h.GetDB(c), kind, userID, recipeID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, recipe)
	}
}

func (h *RecipeHandler) removeFrom(kind models.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := h.GetAndAuthorizeUserID(c)
		if !ok {
			return
		}
		recipeID, err := ParseParamID(c, "id")
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}

		if err := h.membershipService.Remove(c.Request.Context(), h.GetDB(c), kind, userID, recipeID); err != nil {
			h.HandleServiceError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, err := h.shoppingListService.Download(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", file.Content)
}

func (h *RecipeHandler) absoluteURL(c *gin.Context, path string) string {
	if h.baseURL != "" {
		return h.baseURL + path
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + path
}
