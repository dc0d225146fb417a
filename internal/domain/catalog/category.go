package catalog

import (
	"strings"

	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// Category groups items for browsing.
type Category string

const (
	CategorySports Category = "SPORTS"
	CategoryPhoto  Category = "PHOTO"
	CategoryDIY    Category = "DIY"
	CategoryOther  Category = "OTHER"
)

// Categories lists every category.
func Categories() []Category {
	return []Category{CategorySports, CategoryPhoto, CategoryDIY, CategoryOther}
}

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	switch c {
	case CategorySports, CategoryPhoto, CategoryDIY, CategoryOther:
		return true
	}
	return false
}

// ParseCategory reads a case-insensitive category token.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", apperror.NewValidationError("invalid category: " + s)
	}
	return c, nil
}
