package models

import "time"

// MembershipKind selects one of the two (user, recipe) relation tables.
type MembershipKind string

const (
	KindFavorite     MembershipKind = "favorite"
	KindShoppingCart MembershipKind = "shopping_cart"
)

func (k MembershipKind) Valid() bool {
	return k == KindFavorite || k == KindShoppingCart
}

// Table returns the backing table name.
func (k MembershipKind) Table() string {
	if k == KindShoppingCart {
		return "shopping_carts"
	}
	return "favorites"
}

// Row builds an insertable row for the kind.
func (k MembershipKind) Row(userID, recipeID uint) interface{} {
	if k == KindShoppingCart {
		return &ShoppingCart{UserID: userID, RecipeID: recipeID}
	}
	return &Favorite{UserID: userID, RecipeID: recipeID}
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_recipe"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorites_user_recipe;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

type ShoppingCart struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_shopping_carts_user_recipe"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_shopping_carts_user_recipe;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}
