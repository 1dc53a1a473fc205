package category

import (
	"context"
	"fmt"

	"github.com/ecomstock/inventory/internal/models"
	"github.com/ecomstock/inventory/internal/repository"
)

// Category service
// Conflict and existence rules live in the repository layer, backed by db constraints,
// so concurrent writers cannot slip past a pre-check
type CategoryService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *CategoryService {
	return &CategoryService{storage: storage}
}

func (s *CategoryService) Create(ctx context.Context, name string, description string) (models.Category, error) {
	category, err := s.storage.Category().Create(ctx, repository.CreateCategoryParams{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return category, fmt.Errorf("can't create category. Err: %w", err)
	}

	return category, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (models.Category, error) {
	return s.storage.Category().GetByID(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.storage.Category().List(ctx)
}

func (s *CategoryService) Update(ctx context.Context, id int64, name string, description string) (models.Category, error) {
	category, err := s.storage.Category().Update(ctx, id, repository.UpdateCategoryParams{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return category, fmt.Errorf("can't update category. Err: %w", err)
	}

	return category, nil
}

// Delete category
// Fails with apperrors.ErrCategoryHasProducts while products reference it
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.storage.Category().Delete(ctx, id)
}
