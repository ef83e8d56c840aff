package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/metrics"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/internal/services/dto"
	"foodgram_backend/pkg/apperrors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const ShoppingListFilename = "shopping_list.txt"

// ShoppingList is the aggregated content of a user's cart.
type ShoppingList struct {
	Username    string
	GeneratedAt time.Time
	Items       []repositories.IngredientTotal
	Recipes     []repositories.CartRecipe
}

type ShoppingListService interface {
	// Build aggregates the cart; an empty cart is ErrShoppingCartEmpty.
	Build(ctx context.Context, db *gorm.DB, userID uint) (*ShoppingList, error)
	Download(ctx context.Context, db *gorm.DB, userID uint) (*dto.ShoppingListFile, error)
}

type shoppingListService struct {
	membershipRepo repositories.MembershipRepository
	userRepo       repositories.UserRepository
	now            func() time.Time
}

func NewShoppingListService(
	membershipRepo repositories.MembershipRepository,
	userRepo repositories.UserRepository,
	now func() time.Time,
) ShoppingListService {
	if now == nil {
		now = time.Now
	}
	return &shoppingListService{
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		now:            now,
	}
}

func (s *shoppingListService) Build(ctx context.Context, db *gorm.DB, userID uint) (*ShoppingList, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	list := &ShoppingList{
		Username:    user.Username,
		GeneratedAt: s.now(),
	}

	// both queries are read-only and independent
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.membershipRepo.IngredientTotals(db.WithContext(gctx), userID)
		list.Items = items
		return err
	})
	g.Go(func() error {
		recipes, err := s.membershipRepo.CartRecipes(db.WithContext(gctx), userID)
		list.Recipes = recipes
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if len(list.Recipes) == 0 {
		return nil, apperrors.ErrShoppingCartEmpty
	}
	return list, nil
}

func (s *shoppingListService) Download(ctx context.Context, db *gorm.DB, userID uint) (*dto.ShoppingListFile, error) {
	list, err := s.Build(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	metrics.RecordShoppingListDownload(len(list.Items))
	logger.CtxInfo(ctx, "Shopping list rendered", "lines", len(list.Items), "recipes", len(list.Recipes))
	return &dto.ShoppingListFile{
		Filename: ShoppingListFilename,
		Content:  []byte(RenderShoppingList(list)),
	}, nil
}

// RenderShoppingList formats the list as plain text. Output depends only on
// the list, so it is stable for a fixed GeneratedAt.
func RenderShoppingList(list *ShoppingList) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Shopping list for %s\n", list.Username)
	fmt.Fprintf(&b, "Generated at %s\n", list.GeneratedAt.Format("2006-01-02 15:04"))

	b.WriteString("\nIngredients:\n")
	for i, item := range list.Items {
		fmt.Fprintf(&b, "%d. %s (%s) - %d\n", i+1, item.Name, item.MeasurementUnit, item.Total)
	}

	b.WriteString("\nRecipes:\n")
	for _, r := range list.Recipes {
		fmt.Fprintf(&b, "- %s (@%s)\n", r.Name, r.AuthorUsername)
	}
	return b.String()
}
