package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a spending category owned by one user.
type Category struct {
	DefaultModel
	User      User      `json:"-"`
	UserID    uuid.UUID `json:"userId" gorm:"index" example:"0b0ec7d5-1b5f-4c6b-90d6-2a4b6b8e5c1e"`
	Name      string    `json:"name" example:"Food"`
	Icon      string    `json:"icon" example:"utensils"`
	IconColor string    `json:"iconColor" example:"#10B981"`
}

func (c *Category) BeforeSave(_ *gorm.DB) error {
	trim(&c.Name, &c.Icon, &c.IconColor)
	return nil
}

// DefaultCategories returns the categories every new user starts with.
func DefaultCategories(userID uuid.UUID) []Category {
	defaults := []struct{ name, icon, color string }{
		{"Food", "utensils", "#10B981"},
		{"Shopping", "shopping-bag", "#3B82F6"},
		{"Entertainment", "film", "#8B5CF6"},
		{"Transport", "bus", "#F59E0B"},
		{"Education", "book", "#EC4899"},
		{"Other", "ellipsis-h", "#6B7280"},
	}

	categories := make([]Category, 0, len(defaults))
	for _, d := range defaults {
		categories = append(categories, Category{
			UserID:    userID,
			Name:      d.name,
			Icon:      d.icon,
			IconColor: d.color,
		})
	}

	return categories
}

// FindCategory returns the category with the ID if it belongs to the user.
func FindCategory(db *gorm.DB, userID, id uuid.UUID) (Category, error) {
	var category Category
	err := db.Where("user_id = ?", userID).First(&category, "id = ?", id).Error
	return category, err
}

// UserCategories returns all categories of a user sorted by name.
func UserCategories(db *gorm.DB, userID uuid.UUID) ([]Category, error) {
	var categories []Category
	err := db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error
	return categories, err
}
