package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecomstock/inventory/internal/models"
)

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If username or email is taken already must return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id, email, or either email or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByEmailOrUsername(ctx context.Context, email string, username string) (models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the token whatever state it is in (revoked or expired included)
	// If not found must return apperrors.ErrRefreshTokenNotFound
	GetToken(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Return a usable token only
	// If the token is revoked must return apperrors.ErrRefreshTokenRevoked
	// If the token is expired at 'now' must return apperrors.ErrRefreshTokenExpired
	GetValidToken(ctx context.Context, tokenString string, now time.Time) (models.RefreshToken, error)

	// Set the revoked flag. Idempotent: revoking a revoked token is not an error.
	// Reports whether the token exists at all.
	Revoke(ctx context.Context, tokenString string) (found bool, err error)
}

type CreateCategoryParams struct {
	Name        string
	Description string
}

type UpdateCategoryParams struct {
	Name        string
	Description string
}

// Category repository interface
type CategoryRepo interface {
	// Create category
	// If the name is taken (case-insensitively) must return apperrors.ErrCategoryNameTaken
	Create(ctx context.Context, arg CreateCategoryParams) (models.Category, error)

	// Get category with its product count
	// If not found must return apperrors.ErrCategoryNotFound
	GetByID(ctx context.Context, id int64) (models.Category, error)

	// List all categories with product counts, ordered by name
	List(ctx context.Context) ([]models.Category, error)

	// Replace name and description
	// Name conflicts with other categories return apperrors.ErrCategoryNameTaken
	Update(ctx context.Context, id int64, arg UpdateCategoryParams) (models.Category, error)

	// Delete category
	// If products still reference it must return apperrors.ErrCategoryHasProducts
	Delete(ctx context.Context, id int64) error
}

type CreateProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int32
	ImageURL    string
	CategoryID  int64
}

type UpdateProductParams = CreateProductParams

// Filter and pagination options for product listing
type ProductFilter struct {
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Page       int
	Limit      int
}

// Product repository interface
type ProductRepo interface {
	// Create product
	// If the category does not exist must return apperrors.ErrCategoryNotFound
	Create(ctx context.Context, arg CreateProductParams) (models.Product, error)

	// Get product with its category name
	// If not found must return apperrors.ErrProductNotFound
	GetByID(ctx context.Context, id int64) (models.Product, error)

	// List products matching the filter, newest first, plus the total match count
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)

	// Case-insensitive keyword search over name and description
	Search(ctx context.Context, keyword string) ([]models.Product, error)

	// Replace all updatable fields at once
	Update(ctx context.Context, id int64, arg UpdateProductParams) (models.Product, error)

	// Delete product
	// If not found must return apperrors.ErrProductNotFound
	Delete(ctx context.Context, id int64) error
}

// Storage aggregates the repositories and runs multi-statement flows in one transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Category() CategoryRepo
	Product() ProductRepo

	// Run fn with a Storage bound to a single transaction
	// Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
