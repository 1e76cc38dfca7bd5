package catalog

import (
	"strings"
	"time"

	"github.com/velux/backend/internal/domain/shared"
)

// Category groups products in the storefront
type Category struct {
	shared.BaseEntity
	Name        string
	Description string
	ImageKey    string
}

// NewCategory creates a new category
func NewCategory(name, description string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	return &Category{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        strings.TrimSpace(name),
		Description: description,
	}, nil
}

// Update updates the category's name and description
func (c *Category) Update(name, description string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Description = description
	c.UpdatedAt = time.Now()
	return nil
}

// SetImage replaces the category image and returns the previous key
func (c *Category) SetImage(key string) string {
	previous := c.ImageKey
	c.ImageKey = strings.TrimSpace(key)
	c.UpdatedAt = time.Now()
	if previous == c.ImageKey {
		return ""
	}
	return previous
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
