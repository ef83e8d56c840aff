package services

import (
	"sort"

	"foodgram_backend/internal/models"
	"foodgram_backend/internal/services/dto"
)

// presenter builds response DTOs; it resolves storage keys into URLs.
type presenter struct {
	uploads UploadService
}

func (p presenter) user(u *models.User, isSubscribed bool) dto.UserResponse {
	resp := dto.UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
	if u.Avatar != "" {
		url := p.uploads.URL(u.Avatar)
		resp.Avatar = &url
	}
	return resp
}

func (p presenter) shortRecipe(r *models.Recipe) dto.ShortRecipeResponse {
	return dto.ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.uploads.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p presenter) shortRecipes(recipes []models.Recipe) []dto.ShortRecipeResponse {
	out := make([]dto.ShortRecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, p.shortRecipe(&recipes[i]))
	}
	return out
}

// recipe expects Author and Ingredients.Ingredient preloaded.
func (p presenter) recipe(r *models.Recipe, followsAuthor, favorited, inCart bool) dto.RecipeResponse {
	ingredients := make([]dto.RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		item := dto.RecipeIngredientResponse{ID: line.IngredientID, Amount: line.Amount}
		if line.Ingredient != nil {
			item.Name = line.Ingredient.Name
			item.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, item)
	}
	sort.SliceStable(ingredients, func(i, j int) bool {
		if ingredients[i].Name != ingredients[j].Name {
			return ingredients[i].Name < ingredients[j].Name
		}
		return ingredients[i].MeasurementUnit < ingredients[j].MeasurementUnit
	})

	resp := dto.RecipeResponse{
		ID:               r.ID,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            p.uploads.URL(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	if r.Author != nil {
		resp.Author = p.user(r.Author, followsAuthor)
	}
	return resp
}
