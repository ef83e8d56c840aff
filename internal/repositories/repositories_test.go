package repositories

import (
	"fmt"
	"testing"
	"time"

	"foodgram_backend/internal/config"
	"foodgram_backend/internal/database"
	"foodgram_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    username,
		LastName:     "Test",
		PasswordHash: "x",
	}
	require.NoError(t, NewUserRepository().Create(db, u))
	return u
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	i := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(i).Error)
	return i
}

func createRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines map[uint]int) *models.Recipe {
	t.Helper()
	r := &models.Recipe{AuthorID: author.ID, Name: name, Image: "recipes/x.png", Text: "cook", CookingTime: 10}
	for id, amount := range lines {
		r.Ingredients = append(r.Ingredients, models.RecipeIngredient{IngredientID: id, Amount: amount})
	}
	require.NoError(t, NewRecipeRepository().Create(db, r))
	return r
}

func TestIngredientSearchIsCaseInsensitivePrefix(t *testing.T) {
	db := newTestDB(t)
	repo := NewIngredientRepository()
	createIngredient(t, db, "sugar", "g")
	createIngredient(t, db, "Salt", "g")
	createIngredient(t, db, "salmon", "g")
	createIngredient(t, db, "brown sugar", "g")
	createIngredient(t, db, "50%_cream", "ml")

	got, err := repo.Search(db, "SAL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Salt", got[0].Name)
	assert.Equal(t, "salmon", got[1].Name)

	got, err = repo.Search(db, "50%")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = repo.Search(db, "")
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestIngredientSearchFoldsNonASCII(t *testing.T) {
	db := newTestDB(t)
	repo := NewIngredientRepository()
	createIngredient(t, db, "Сахар", "г")
	createIngredient(t, db, "сахарная пудра", "г")
	createIngredient(t, db, "Соль", "г")
	createIngredient(t, db, "Éclair", "шт")

	got, err := repo.Search(db, "САХ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Сахар", got[0].Name)
	assert.Equal(t, "сахарная пудра", got[1].Name)

	got, err = repo.Search(db, "éc")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Éclair", got[0].Name)
}

func TestIngredientCreateMissingSkipsDuplicates(t *testing.T) {
	db := newTestDB(t)
	repo := NewIngredientRepository()
	createIngredient(t, db, "flour", "g")

	_, err := repo.CreateMissing(db, []models.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "flour", MeasurementUnit: "kg"},
		{Name: "egg", MeasurementUnit: "pcs"},
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestRecipeReplaceIngredientsLeavesNoResidue(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository()
	author := createUser(t, db, "chef")
	a := createIngredient(t, db, "apple", "pcs")
	b := createIngredient(t, db, "butter", "g")
	recipe := createRecipe(t, db, author, "Pie", map[uint]int{a.ID: 1})

	require.NoError(t, repo.ReplaceIngredients(db, recipe.ID, []models.RecipeIngredient{{IngredientID: b.ID, Amount: 2}}))

	got, err := repo.FindByID(db, recipe.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, b.ID, got.Ingredients[0].IngredientID)
	assert.Equal(t, 2, got.Ingredients[0].Amount)
	assert.Equal(t, "butter", got.Ingredients[0].Ingredient.Name)

	var residue int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", a.ID).Count(&residue).Error)
	assert.Zero(t, residue)
}

func TestRecipeDuplicateIngredientRejected(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "chef")
	a := createIngredient(t, db, "apple", "pcs")

	r := &models.Recipe{AuthorID: author.ID, Name: "Pie", Image: "x", Text: "t", CookingTime: 1,
		Ingredients: []models.RecipeIngredient{{IngredientID: a.ID, Amount: 1}, {IngredientID: a.ID, Amount: 2}}}
	err := NewRecipeRepository().Create(db, r)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestRecipeListFiltersAndOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository()
	members := NewMembershipRepository()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	flour := createIngredient(t, db, "flour", "g")

	first := createRecipe(t, db, alice, "First", map[uint]int{flour.ID: 1})
	second := createRecipe(t, db, alice, "Second", map[uint]int{flour.ID: 1})
	third := createRecipe(t, db, bob, "Third", map[uint]int{flour.ID: 1})
	db.Model(first).Update("created_at", time.Now().UTC().Add(-2*time.Hour))
	db.Model(second).Update("created_at", time.Now().UTC().Add(-time.Hour))

	all, total, err := repo.List(db, RecipeFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})

	byAlice, total, err := repo.List(db, RecipeFilter{AuthorID: alice.ID}, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, byAlice, 1)
	assert.Equal(t, second.ID, byAlice[0].ID)

	require.NoError(t, members.Add(db, models.KindFavorite, bob.ID, first.ID))
	require.NoError(t, members.Add(db, models.KindShoppingCart, bob.ID, third.ID))

	favs, total, err := repo.List(db, RecipeFilter{FavoritedBy: bob.ID}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, first.ID, favs[0].ID)

	cart, _, err := repo.List(db, RecipeFilter{InCartOf: bob.ID}, 1, 10)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, third.ID, cart[0].ID)

	counts, err := repo.CountByAuthors(db, []uint{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[alice.ID])
	assert.EqualValues(t, 1, counts[bob.ID])
}

func TestRecipeDeleteCascadesRelations(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository()
	members := NewMembershipRepository()
	author := createUser(t, db, "chef")
	flour := createIngredient(t, db, "flour", "g")
	recipe := createRecipe(t, db, author, "Bread", map[uint]int{flour.ID: 500})
	require.NoError(t, members.Add(db, models.KindFavorite, author.ID, recipe.ID))
	require.NoError(t, members.Add(db, models.KindShoppingCart, author.ID, recipe.ID))

	require.NoError(t, repo.Delete(db, recipe.ID))

	_, err := repo.FindByID(db, recipe.ID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
	for _, m := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCart{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n)
	}
	assert.ErrorIs(t, repo.Delete(db, recipe.ID), ErrRecipeNotFound)
}

func TestMembershipAddRemove(t *testing.T) {
	db := newTestDB(t)
	repo := NewMembershipRepository()
	user := createUser(t, db, "eater")
	flour := createIngredient(t, db, "flour", "g")
	recipe := createRecipe(t, db, user, "Bread", map[uint]int{flour.ID: 1})

	for _, kind := range []models.MembershipKind{models.KindFavorite, models.KindShoppingCart} {
		t.Run(string(kind), func(t *testing.T) {
			require.NoError(t, repo.Add(db, kind, user.ID, recipe.ID))
			assert.ErrorIs(t, repo.Add(db, kind, user.ID, recipe.ID), ErrMembershipExists)

			ok, err := repo.Exists(db, kind, user.ID, recipe.ID)
			require.NoError(t, err)
			assert.True(t, ok)

			flags, err := repo.Contains(db, kind, user.ID, []uint{recipe.ID, recipe.ID + 100})
			require.NoError(t, err)
			assert.Equal(t, map[uint]bool{recipe.ID: true}, flags)

			require.NoError(t, repo.Remove(db, kind, user.ID, recipe.ID))
			assert.ErrorIs(t, repo.Remove(db, kind, user.ID, recipe.ID), ErrMembershipNotFound)
		})
	}
}

func TestIngredientTotalsAggregatesAcrossCart(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipRepository()
	author := createUser(t, db, "chef")
	shopper := createUser(t, db, "shopper")
	flour := createIngredient(t, db, "flour", "g")
	egg := createIngredient(t, db, "egg", "pcs")
	milk := createIngredient(t, db, "milk", "ml")

	a := createRecipe(t, db, author, "Pancakes", map[uint]int{flour.ID: 100, egg.ID: 2})
	b := createRecipe(t, db, author, "Bread", map[uint]int{flour.ID: 50})
	createRecipe(t, db, author, "Latte", map[uint]int{milk.ID: 200})

	require.NoError(t, members.Add(db, models.KindShoppingCart, shopper.ID, a.ID))
	require.NoError(t, members.Add(db, models.KindShoppingCart, shopper.ID, b.ID))

	totals, err := members.IngredientTotals(db, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, []IngredientTotal{
		{Name: "egg", MeasurementUnit: "pcs", Total: 2},
		{Name: "flour", MeasurementUnit: "g", Total: 150},
	}, totals)

	recipes, err := members.CartRecipes(db, shopper.ID)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Bread", recipes[0].Name)
	assert.Equal(t, "chef", recipes[0].AuthorUsername)

	empty, err := members.IngredientTotals(db, author.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSubscriptions(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository()
	reader := createUser(t, db, "reader")
	zed := createUser(t, db, "zed")
	amy := createUser(t, db, "amy")

	assert.ErrorIs(t, repo.Create(db, reader.ID, reader.ID), ErrSelfSubscription)
	require.NoError(t, repo.Create(db, reader.ID, zed.ID))
	require.NoError(t, repo.Create(db, reader.ID, amy.ID))
	assert.ErrorIs(t, repo.Create(db, reader.ID, zed.ID), ErrSubscriptionExists)

	authors, total, err := repo.ListAuthors(db, reader.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, authors, 2)
	assert.Equal(t, "amy", authors[0].Username)

	following, err := repo.Following(db, reader.ID, []uint{zed.ID, amy.ID, reader.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{zed.ID: true, amy.ID: true}, following)

	require.NoError(t, repo.Delete(db, reader.ID, zed.ID))
	assert.ErrorIs(t, repo.Delete(db, reader.ID, zed.ID), ErrSubscriptionNotFound)
}
