package product

import (
	"context"
	"fmt"
	"math"

	"github.com/ecomstock/inventory/internal/models"
	"github.com/ecomstock/inventory/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type ProductService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ProductService {
	return &ProductService{storage: storage}
}

func (s *ProductService) Create(ctx context.Context, arg repository.CreateProductParams) (models.Product, error) {
	product, err := s.storage.Product().Create(ctx, arg)
	if err != nil {
		return product, fmt.Errorf("can't create product. Err: %w", err)
	}

	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (models.Product, error) {
	return s.storage.Product().GetByID(ctx, id)
}

// List products page by page with optional category and price bounds
// Out of range page or limit values are clamped, not rejected
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) (models.ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	products, total, err := s.storage.Product().List(ctx, filter)
	if err != nil {
		return models.ProductPage{}, fmt.Errorf("can't list products. Err: %w", err)
	}

	return models.ProductPage{
		Products:   products,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalCount: total,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *ProductService) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	products, err := s.storage.Product().Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("can't search products. Err: %w", err)
	}

	return products, nil
}

// Update replaces the whole updatable field set at once
// The caller sends every field, nothing is patched in place
func (s *ProductService) Update(ctx context.Context, id int64, arg repository.UpdateProductParams) (models.Product, error) {
	product, err := s.storage.Product().Update(ctx, id, arg)
	if err != nil {
		return product, fmt.Errorf("can't update product. Err: %w", err)
	}

	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.storage.Product().Delete(ctx, id)
}
