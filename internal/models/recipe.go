package models

import (
	"strconv"
	"strings"
)

const (
	MinCookingTime = 1
	MinAmount      = 1
	MaxRecipeName  = 200
)

type Recipe struct {
	BaseModel
	AuthorID    uint   `gorm:"not null;index"`
	Name        string `gorm:"size:200;not null"`
	Image       string `gorm:"size:255;not null"` // storage key
	Text        string `gorm:"type:text;not null"`
	CookingTime int    `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1"`

	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

type RecipeIngredient struct {
	ID           uint `gorm:"primaryKey"`
	RecipeID     uint `gorm:"not null;uniqueIndex:idx_recipe_ingredients_recipe_ingredient"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_recipe_ingredients_recipe_ingredient;index"`
	Amount       int  `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

// ShortCode is the base36 form of the recipe ID used by short links.
func ShortCode(id uint) string {
	return strconv.FormatUint(uint64(id), 36)
}

// ParseShortCode reverses ShortCode.
func ParseShortCode(code string) (uint, bool) {
	n, err := strconv.ParseUint(strings.ToLower(code), 36, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
