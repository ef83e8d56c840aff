package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler       *AuthHandler
	UserHandler       *UserHandler
	IngredientHandler *IngredientHandler
	RecipeHandler     *RecipeHandler
	FileHandler       *FileHandler
	HealthHandler     *HealthHandler
}
