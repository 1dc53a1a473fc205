package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/models"
	"github.com/ecomstock/inventory/internal/repository"
)

type ProductRepo struct {
	DB DBTX
}

const createProduct = `-- name: CreateProduct
INSERT INTO products (name, description, price, stock, image_url, category_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`

func (r *ProductRepo) Create(ctx context.Context, arg repository.CreateProductParams) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, createProduct, arg.Name, arg.Description, arg.Price, arg.Stock, arg.ImageURL, arg.CategoryID)
	id, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return models.Product{}, fmt.Errorf("repo error: %w", apperrors.ErrCategoryNotFound)
		}
		return models.Product{}, fmt.Errorf("db error: %w", err)
	}

	return r.GetByID(ctx, id)
}

const getProductByID = `-- name: GetProductByID
SELECT p.id, p.name, p.description, p.price, p.stock, p.image_url, p.category_id, c.name, p.created_at, p.updated_at
FROM products p
JOIN categories c ON c.id = p.category_id
WHERE p.id = $1
`

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, getProductByID, id)
	product, err := pgx.CollectOneRow(rows, rowToProduct)

	switch {
	case err == nil:
		return product, nil
	case errors.Is(err, pgx.ErrNoRows):
		return product, fmt.Errorf("repo error: %w", apperrors.ErrProductNotFound)
	default:
		return product, fmt.Errorf("db error: %w", err)
	}
}

// List products matching the filter, newest first
// Returns the page requested by filter.Page/filter.Limit and the total match count
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	where, args := buildProductFilter(filter)

	countQuery := "SELECT count(*) FROM products p" + where
	rows, _ := r.DB.Query(ctx, countQuery, args...)
	total, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	pageQuery := fmt.Sprintf(`
SELECT p.id, p.name, p.description, p.price, p.stock, p.image_url, p.category_id, c.name, p.created_at, p.updated_at
FROM products p
JOIN categories c ON c.id = p.category_id%s
ORDER BY p.id DESC
LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, _ = r.DB.Query(ctx, pageQuery, args...)
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return products, total, nil
}

const searchProducts = `-- name: SearchProducts
SELECT p.id, p.name, p.description, p.price, p.stock, p.image_url, p.category_id, c.name, p.created_at, p.updated_at
FROM products p
JOIN categories c ON c.id = p.category_id
WHERE p.name ILIKE $1 OR p.description ILIKE $1
ORDER BY p.id DESC
`

func (r *ProductRepo) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	pattern := "%" + escapeLike(keyword) + "%"
	rows, _ := r.DB.Query(ctx, searchProducts, pattern)
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return products, nil
}

const updateProduct = `-- name: UpdateProduct
UPDATE products
SET name = $2, description = $3, price = $4, stock = $5, image_url = $6, category_id = $7, updated_at = now()
WHERE id = $1
RETURNING id
`

func (r *ProductRepo) Update(ctx context.Context, id int64, arg repository.UpdateProductParams) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, updateProduct, id, arg.Name, arg.Description, arg.Price, arg.Stock, arg.ImageURL, arg.CategoryID)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])

	switch {
	case err == nil:
		return r.GetByID(ctx, id)
	case errors.Is(err, pgx.ErrNoRows):
		return models.Product{}, fmt.Errorf("repo error: %w", apperrors.ErrProductNotFound)
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return models.Product{}, fmt.Errorf("repo error: %w", apperrors.ErrCategoryNotFound)
		}
		return models.Product{}, fmt.Errorf("db error: %w", err)
	}
}

const deleteProduct = `-- name: DeleteProduct
DELETE FROM products
WHERE id = $1
`

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteProduct, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrProductNotFound)
	}

	return nil
}

// Build WHERE clause and the matching positional args for the filter
func buildProductFilter(filter repository.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.CategoryID != nil {
		add("p.category_id = $%d", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		add("p.price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("p.price <= $%d", *filter.MaxPrice)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return "\nWHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func rowToProduct(row pgx.CollectableRow) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CategoryID, &p.CategoryName, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
