package database

import (
	"errors"
	"fmt"
	"testing"

	"foodgram_backend/internal/config"
	"foodgram_backend/internal/models"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062}))
}

func TestUniqueIndexesSurfaceAsViolations(t *testing.T) {
	db := openMemory(t)

	u := models.User{Email: "a@x.io", Username: "a", FirstName: "A", LastName: "A", PasswordHash: "h"}
	require.NoError(t, db.Create(&u).Error)
	r := models.Recipe{AuthorID: u.ID, Name: "Soup", Image: "recipes/x.png", Text: "boil", CookingTime: 5}
	require.NoError(t, db.Create(&r).Error)

	require.NoError(t, db.Create(&models.Favorite{UserID: u.ID, RecipeID: r.ID}).Error)
	err := db.Create(&models.Favorite{UserID: u.ID, RecipeID: r.ID}).Error
	assert.True(t, IsUniqueViolation(err), "got %v", err)

	dup := models.User{Email: "a@x.io", Username: "b", FirstName: "B", LastName: "B", PasswordHash: "h"}
	assert.True(t, IsUniqueViolation(db.Create(&dup).Error))
}

func TestSelfSubscriptionRejectedByCheck(t *testing.T) {
	db := openMemory(t)

	u := models.User{Email: "a@x.io", Username: "a", FirstName: "A", LastName: "A", PasswordHash: "h"}
	require.NoError(t, db.Create(&u).Error)

	err := db.Create(&models.Subscription{UserID: u.ID, AuthorID: u.ID}).Error
	require.Error(t, err)
	assert.True(t, IsCheckViolation(err), "got %v", err)
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateBackfillsSearchNames(t *testing.T) {
	db := openMemory(t)
	ing := &models.Ingredient{Name: "Мука", MeasurementUnit: "г"}
	require.NoError(t, db.Create(ing).Error)
	assert.Equal(t, "мука", ing.SearchName)

	require.NoError(t, db.Model(ing).UpdateColumn("search_name", "").Error)
	require.NoError(t, Migrate(db))

	var got models.Ingredient
	require.NoError(t, db.First(&got, ing.ID).Error)
	assert.Equal(t, "мука", got.SearchName)
}
