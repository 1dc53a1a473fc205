package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/models"
	"github.com/ecomstock/inventory/internal/repository"
	"github.com/ecomstock/inventory/internal/testutil"
)

func Test_ProductRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newCategory := func(t *testing.T, tx pgx.Tx, name string) models.Category {
		repo := &CategoryRepo{DB: tx}
		category, err := repo.Create(t.Context(), repository.CreateCategoryParams{Name: name})
		require.NoError(t, err)
		return category
	}

	newProduct := func(t *testing.T, tx pgx.Tx, name string, price int64, categoryID int64) models.Product {
		repo := &ProductRepo{DB: tx}
		product, err := repo.Create(t.Context(), repository.CreateProductParams{
			Name:        name,
			Description: name + " description",
			Price:       decimal.NewFromInt(price),
			Stock:       5,
			CategoryID:  categoryID,
		})
		require.NoError(t, err)
		return product
	}

	t.Run("create product ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			category := newCategory(t, tx, "Electronics")
			repo := &ProductRepo{DB: tx}

			product, err := repo.Create(t.Context(), repository.CreateProductParams{
				Name:        "Laptop",
				Description: "Thin and light",
				Price:       decimal.RequireFromString("999.99"),
				Stock:       3,
				ImageURL:    "/uploads/products/laptop.png",
				CategoryID:  category.ID,
			})

			require.NoError(t, err)
			assert.NotZero(t, product.ID)
			assert.Equal(t, "Laptop", product.Name)
			assert.True(t, product.Price.Equal(decimal.RequireFromString("999.99")), "price should survive the round trip")
			assert.Equal(t, int32(3), product.Stock)
			assert.Equal(t, "/uploads/products/laptop.png", product.ImageURL)
			assert.Equal(t, category.ID, product.CategoryID)
			assert.Equal(t, "Electronics", product.CategoryName, "category name should be joined in")
		})
	})

	t.Run("create with unknown category fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ProductRepo{DB: tx}

			_, err := repo.Create(t.Context(), repository.CreateProductParams{
				Name:       "Laptop",
				Price:      decimal.NewFromInt(100),
				CategoryID: 42,
			})
			require.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
		})
	})

	t.Run("get by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ProductRepo{DB: tx}

			_, err := repo.GetByID(t.Context(), 42)
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})

	t.Run("list newest first with total", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			category := newCategory(t, tx, "Electronics")
			newProduct(t, tx, "Laptop", 1000, category.ID)
			newProduct(t, tx, "Phone", 500, category.ID)
			newProduct(t, tx, "Tablet", 700, category.ID)
			repo := &ProductRepo{DB: tx}

			products, total, err := repo.List(t.Context(), repository.ProductFilter{Page: 1, Limit: 2})

			require.NoError(t, err)
			assert.Equal(t, int64(3), total)
			require.Len(t, products, 2)
			assert.Equal(t, "Tablet", products[0].Name)
			assert.Equal(t, "Phone", products[1].Name)

			products, total, err = repo.List(t.Context(), repository.ProductFilter{Page: 2, Limit: 2})

			require.NoError(t, err)
			assert.Equal(t, int64(3), total)
			require.Len(t, products, 1)
			assert.Equal(t, "Laptop", products[0].Name)
		})
	})

	t.Run("list filters by category", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			electronics := newCategory(t, tx, "Electronics")
			books := newCategory(t, tx, "Books")
			newProduct(t, tx, "Laptop", 1000, electronics.ID)
			newProduct(t, tx, "Novel", 15, books.ID)
			repo := &ProductRepo{DB: tx}

			products, total, err := repo.List(t.Context(), repository.ProductFilter{
				CategoryID: &books.ID,
				Page:       1,
				Limit:      10,
			})

			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
			require.Len(t, products, 1)
			assert.Equal(t, "Novel", products[0].Name)
		})
	})

	t.Run("list filters by price range", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			category := newCategory(t, tx, "Electronics")
			newProduct(t, tx, "Laptop", 1000, category.ID)
			newProduct(t, tx, "Phone", 500, category.ID)
			newProduct(t, tx, "Cable", 10, category.ID)
			repo := &ProductRepo{DB: tx}

			minPrice := decimal.NewFromInt(100)
			maxPrice := decimal.NewFromInt(600)
			products, total, err := repo.List(t.Context(), repository.ProductFilter{
				MinPrice: &minPrice,
				MaxPrice: &maxPrice,
				Page:     1,
				Limit:    10,
			})

			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
			require.Len(t, products, 1)
			assert.Equal(t, "Phone", products[0].Name)
		})
	})

	t.Run("search is case-insensitive over name and description", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			category := newCategory(t, tx, "Electronics")
			newProduct(t, tx, "Gaming Laptop", 1000, category.ID)
			newProduct(t, tx, "Phone", 500, category.ID)
			repo := &ProductRepo{DB: tx}

			byName, err := repo.Search(t.Context(), "LAPTOP")
			require.NoError(t, err)
			require.Len(t, byName, 1)
			assert.Equal(t, "Gaming Laptop", byName[0].Name)

			byDescription, err := repo.Search(t.Context(), "phone description")
			require.NoError(t, err)
			require.Len(t, byDescription, 1)
			assert.Equal(t, "Phone", byDescription[0].Name)

			none, err := repo.Search(t.Context(), "dishwasher")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	})

	t.Run("search escapes like wildcards", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			category := newCategory(t, tx, "Electronics")
			newProduct(t, tx, "100% Cotton Sleeve", 20, category.ID)
			newProduct(t, tx, "Laptop", 1000, category.ID)
			repo := &ProductRepo{DB: tx}

			products, err := repo.Search(t.Context(), "100%")

			require.NoError(t, err)
			require.Len(t, products, 1, "percent must match literally, not as a wildcard")
			assert.Equal(t, "100% Cotton Sleeve", products[0].Name)
		})
	})

	t.Run("update product", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			electronics := newCategory(t, tx, "Electronics")
			books := newCategory(t, tx, "Books")
			created := newProduct(t, tx, "Laptop", 1000, electronics.ID)
			repo := &ProductRepo{DB: tx}

			updated, err := repo.Update(t.Context(), created.ID, repository.UpdateProductParams{
				Name:        "Refurbished Laptop",
				Description: "Like new",
				Price:       decimal.RequireFromString("799.99"),
				Stock:       1,
				CategoryID:  books.ID,
			})

			require.NoError(t, err)
			assert.Equal(t, created.ID, updated.ID)
			assert.Equal(t, "Refurbished Laptop", updated.Name)
			assert.True(t, updated.Price.Equal(decimal.RequireFromString("799.99")))
			assert.Equal(t, books.ID, updated.CategoryID)
			assert.Equal(t, "Books", updated.CategoryName)
			assert.NotNil(t, updated.UpdatedAt)
		})
	})

	t.Run("update missing product fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ProductRepo{DB: tx}

			_, err := repo.Update(t.Context(), 42, repository.UpdateProductParams{
				Name:       "Laptop",
				Price:      decimal.NewFromInt(100),
				CategoryID: 1,
			})
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})

	t.Run("update to unknown category fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			category := newCategory(t, tx, "Electronics")
			created := newProduct(t, tx, "Laptop", 1000, category.ID)
			repo := &ProductRepo{DB: tx}

			_, err := repo.Update(t.Context(), created.ID, repository.UpdateProductParams{
				Name:       "Laptop",
				Price:      decimal.NewFromInt(100),
				CategoryID: 42,
			})
			require.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
		})
	})

	t.Run("delete product", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			category := newCategory(t, tx, "Electronics")
			created := newProduct(t, tx, "Laptop", 1000, category.ID)
			repo := &ProductRepo{DB: tx}

			require.NoError(t, repo.Delete(t.Context(), created.ID))

			_, err := repo.GetByID(t.Context(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})

	t.Run("delete missing product fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ProductRepo{DB: tx}

			err := repo.Delete(t.Context(), 42)
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})
}
