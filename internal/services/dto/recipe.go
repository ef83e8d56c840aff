package dto

// =======================
// Ingredient DTOs
// =======================

type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientFixture is one entry of the JSON catalog fixture.
type IngredientFixture struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// =======================
// Recipe DTOs
// =======================

type IngredientAmountRequest struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gte=1"`
}

type CreateRecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
	Image       string                    `json:"image" validate:"required,image_data"`
	Name        string                    `json:"name" validate:"required,notblank,max=200"`
	Text        string                    `json:"text" validate:"required,notblank"`
	CookingTime int                       `json:"cooking_time" validate:"gte=1"`
}

// UpdateRecipeRequest serves both PATCH and PUT. Ingredients are always
// required and replace the stored set; a missing image keeps the old one.
type UpdateRecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
	Image       *string                   `json:"image" validate:"omitempty,image_data"`
	Name        *string                   `json:"name" validate:"omitempty,notblank,max=200"`
	Text        *string                   `json:"text" validate:"omitempty,notblank"`
	CookingTime *int                      `json:"cooking_time" validate:"omitempty,gte=1"`
}

// MissingFields lists fields a full replacement (PUT) must carry.
func (r *UpdateRecipeRequest) MissingFields() map[string]string {
	missing := make(map[string]string)
	if r.Name == nil {
		missing["name"] = "This field is required"
	}
	if r.Text == nil {
		missing["text"] = "This field is required"
	}
	if r.CookingTime == nil {
		missing["cooking_time"] = "This field is required"
	}
	return missing
}

type RecipeListQuery struct {
	Page             int  `form:"page" validate:"omitempty,min=1"`
	Limit            int  `form:"limit" validate:"omitempty,min=1,max=100"`
	Author           uint `form:"author"`
	IsFavorited      *int `form:"is_favorited" validate:"omitempty,oneof=0 1"`
	IsInShoppingCart *int `form:"is_in_shopping_cart" validate:"omitempty,oneof=0 1"`
}

type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// ShoppingListFile is a rendered shopping list ready for download.
type ShoppingListFile struct {
	Filename string
	Content  []byte
}
