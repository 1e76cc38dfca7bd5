package catalog

import "github.com/velux/backend/internal/domain/shared"

// Catalog domain errors
var (
	ErrProductNotFound  = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrCategoryNotFound = shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
	ErrDuplicateName    = shared.NewDomainError("ALREADY_EXISTS", "A category with this name already exists")
	ErrPackNotFound     = shared.NewDomainError("PACK_NOT_FOUND", "Pack not found")
	ErrInvalidPackKind  = shared.NewDomainError("INVALID_PACK_KIND", "Unknown pack kind")
)
