package services

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	SubscriptionService SubscriptionService
	IngredientService   IngredientService
	RecipeService       RecipeService
	MembershipService   MembershipService
	ShoppingListService ShoppingListService
	UploadService       UploadService
}
