package handlers

import (
	"net/http"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/middleware"
	"foodgram_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type IngredientHandler struct {
	*BaseHandler
	ingredientService services.IngredientService
}

func NewIngredientHandler(base *BaseHandler, ingredientService services.IngredientService) *IngredientHandler {
	return &IngredientHandler{
		BaseHandler:       base,
		ingredientService: ingredientService,
	}
}

func (h *IngredientHandler) RegisterRoutes(rg *gin.RouterGroup, policy *auth.Policy) {
	ingredients := rg.Group("/ingredients")
	ingredients.Use(middleware.Authorize(policy, auth.ResourceIngredient, auth.ActionRead, auth.OwnerAny))
	{
		ingredients.GET("", h.SearchIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}
}

// SearchIngredients is unpaginated; name is a case-insensitive prefix.
func (h *IngredientHandler) SearchIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.SearchIngredients(c.Request.Context(), h.GetDB(c), c.Query("name"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	ingredient, err := h.ingredientService.GetIngredient(c.Request.Context(), h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ingredient)
}
