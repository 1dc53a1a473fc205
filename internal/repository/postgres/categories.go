package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/models"
	"github.com/ecomstock/inventory/internal/repository"
)

type CategoryRepo struct {
	DB DBTX
}

const createCategory = `-- name: CreateCategory
INSERT INTO categories (name, description)
VALUES ($1, $2)
RETURNING id, name, description, 0 AS product_count, created_at, updated_at
`

func (r *CategoryRepo) Create(ctx context.Context, arg repository.CreateCategoryParams) (models.Category, error) {
	rows, _ := r.DB.Query(ctx, createCategory, arg.Name, arg.Description)
	category, err := pgx.CollectOneRow(rows, rowToCategory)
	if err != nil {
		return category, categoryWriteError(err)
	}

	return category, nil
}

const getCategoryByID = `-- name: GetCategoryByID
SELECT c.id, c.name, c.description, count(p.id) AS product_count, c.created_at, c.updated_at
FROM categories c
LEFT JOIN products p ON p.category_id = c.id
WHERE c.id = $1
GROUP BY c.id
`

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (models.Category, error) {
	rows, _ := r.DB.Query(ctx, getCategoryByID, id)
	category, err := pgx.CollectOneRow(rows, rowToCategory)

	switch {
	case err == nil:
		return category, nil
	case errors.Is(err, pgx.ErrNoRows):
		return category, fmt.Errorf("repo error: %w", apperrors.ErrCategoryNotFound)
	default:
		return category, fmt.Errorf("db error: %w", err)
	}
}

const listCategories = `-- name: ListCategories
SELECT c.id, c.name, c.description, count(p.id) AS product_count, c.created_at, c.updated_at
FROM categories c
LEFT JOIN products p ON p.category_id = c.id
GROUP BY c.id
ORDER BY c.name
`

func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, _ := r.DB.Query(ctx, listCategories)
	categories, err := pgx.CollectRows(rows, rowToCategory)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return categories, nil
}

const updateCategory = `-- name: UpdateCategory
UPDATE categories
SET name = $2, description = $3, updated_at = now()
WHERE id = $1
RETURNING id, name, description,
    (SELECT count(*) FROM products p WHERE p.category_id = categories.id) AS product_count,
    created_at, updated_at
`

func (r *CategoryRepo) Update(ctx context.Context, id int64, arg repository.UpdateCategoryParams) (models.Category, error) {
	rows, _ := r.DB.Query(ctx, updateCategory, id, arg.Name, arg.Description)
	category, err := pgx.CollectOneRow(rows, rowToCategory)

	switch {
	case err == nil:
		return category, nil
	case errors.Is(err, pgx.ErrNoRows):
		return category, fmt.Errorf("repo error: %w", apperrors.ErrCategoryNotFound)
	default:
		return category, categoryWriteError(err)
	}
}

const deleteCategory = `-- name: DeleteCategory
DELETE FROM categories
WHERE id = $1
`

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteCategory, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("repo error: %w", apperrors.ErrCategoryHasProducts)
		}
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrCategoryNotFound)
	}

	return nil
}

// Map name uniqueness violations to the well known conflict error
func categoryWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("repo error: %w", apperrors.ErrCategoryNameTaken)
	}
	return fmt.Errorf("db error: %w", err)
}

func rowToCategory(row pgx.CollectableRow) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
