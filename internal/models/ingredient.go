package models

import (
	"strings"

	"gorm.io/gorm"
)

type Ingredient struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"size:128;not null;uniqueIndex:idx_ingredients_name_unit;index:idx_ingredients_name"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_ingredients_name_unit"`
	// SearchName is Name lowercased in Go; SQLite's LOWER only folds ASCII.
	SearchName string `gorm:"size:128;not null;default:'';index:idx_ingredients_search_name"`
}

// SearchKey folds a name or query prefix the way SearchName is stored.
func SearchKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.SearchName = SearchKey(i.Name)
	return nil
}
