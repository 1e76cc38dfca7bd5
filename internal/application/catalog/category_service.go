package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categories catalog.CategoryRepository
	images     ImageURLResolver
	storage    ObjectStorage
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories catalog.CategoryRepository, images ImageURLResolver, storage ObjectStorage) *CategoryService {
	return &CategoryService{
		categories: categories,
		images:     images,
		storage:    storage,
	}
}

// List returns every category ordered by name
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(ctx, &categories[i], s.images)
	}
	return responses, nil
}

// GetByID returns a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(ctx, category, s.images)
	return &resp, nil
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	if err := s.checkName(ctx, req.Name, nil); err != nil {
		return nil, err
	}
	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	category.SetImage(req.ImageKey)

	if err := s.save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(ctx, category, s.images)
	return &resp, nil
}

// Update applies a partial update to a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description := category.Name, category.Description
	if req.Name != nil {
		name = *req.Name
		if err := s.checkName(ctx, name, &id); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := category.Update(name, description); err != nil {
		return nil, err
	}

	var replaced string
	if req.ImageKey != nil {
		replaced = category.SetImage(*req.ImageKey)
	}

	if err := s.save(ctx, category); err != nil {
		return nil, err
	}
	deleteObjects(ctx, s.storage, []string{replaced})

	resp := ToCategoryResponse(ctx, category, s.images)
	return &resp, nil
}

// Delete deletes a category; its products lose the link but are kept
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if shared.IsNotFound(err) {
			return catalog.ErrCategoryNotFound
		}
		return err
	}
	deleteObjects(ctx, s.storage, []string{category.ImageKey})
	return nil
}

func (s *CategoryService) find(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) checkName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.categories.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return catalog.ErrDuplicateName
	}
	return nil
}

// save maps a unique-index race on the name to the same error as the
// explicit check.
func (s *CategoryService) save(ctx context.Context, category *catalog.Category) error {
	err := s.categories.Save(ctx, category)
	if errors.Is(err, shared.ErrAlreadyExists) {
		return catalog.ErrDuplicateName
	}
	return err
}
