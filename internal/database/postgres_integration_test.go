//go:build integration

package database_test

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"foodgram_backend/internal/config"
	"foodgram_backend/internal/database"
	"foodgram_backend/internal/models"
	"foodgram_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	skipIfNoDocker(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "foodgram",
				"POSTGRES_PASSWORD": "foodgram",
				"POSTGRES_DB":       "foodgram",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := database.Open(config.DatabaseConfig{
		Driver:       "postgres",
		DSN:          fmt.Sprintf("host=%s port=%s user=foodgram password=foodgram dbname=foodgram sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestPostgres_ConstraintsAndAggregation(t *testing.T) {
	db := startPostgres(t)

	users := repositories.NewUserRepository()
	author := &models.User{Email: "a@example.com", Username: "author", FirstName: "A", LastName: "A", PasswordHash: "x"}
	require.NoError(t, users.Create(db, author))

	dup := &models.User{Email: "a@example.com", Username: "other", FirstName: "B", LastName: "B", PasswordHash: "x"}
	err := db.Create(dup).Error
	assert.True(t, database.IsUniqueViolation(err), "expected unique violation, got %v", err)

	flour := &models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	egg := &models.Ingredient{Name: "egg", MeasurementUnit: "pcs"}
	require.NoError(t, db.Create(flour).Error)
	require.NoError(t, db.Create(egg).Error)

	recipes := repositories.NewRecipeRepository()
	pancakes := &models.Recipe{
		AuthorID: author.ID, Name: "Pancakes", Image: "recipes/a.png", Text: "mix", CookingTime: 10,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: flour.ID, Amount: 100},
			{IngredientID: egg.ID, Amount: 2},
		},
	}
	require.NoError(t, recipes.Create(db, pancakes))
	bread := &models.Recipe{
		AuthorID: author.ID, Name: "Bread", Image: "recipes/b.png", Text: "bake", CookingTime: 60,
		Ingredients: []models.RecipeIngredient{{IngredientID: flour.ID, Amount: 50}},
	}
	require.NoError(t, recipes.Create(db, bread))

	bad := &models.RecipeIngredient{RecipeID: bread.ID, IngredientID: egg.ID, Amount: 0}
	err = db.Create(bad).Error
	assert.True(t, database.IsCheckViolation(err), "expected check violation, got %v", err)

	members := repositories.NewMembershipRepository()
	require.NoError(t, members.Add(db, models.KindShoppingCart, author.ID, pancakes.ID))
	require.NoError(t, members.Add(db, models.KindShoppingCart, author.ID, bread.ID))
	assert.True(t, database.IsUniqueViolation(db.Create(&models.ShoppingCart{UserID: author.ID, RecipeID: bread.ID}).Error))

	totals, err := members.IngredientTotals(db, author.ID)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "egg", totals[0].Name)
	assert.EqualValues(t, 2, totals[0].Total)
	assert.Equal(t, "flour", totals[1].Name)
	assert.EqualValues(t, 150, totals[1].Total)
}
