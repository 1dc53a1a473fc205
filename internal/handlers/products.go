package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/handlers/render"
	"github.com/ecomstock/inventory/internal/logger"
	"github.com/ecomstock/inventory/internal/models"
	"github.com/ecomstock/inventory/internal/repository"
)

type productService interface {
	Create(ctx context.Context, arg repository.CreateProductParams) (models.Product, error)
	Get(ctx context.Context, id int64) (models.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) (models.ProductPage, error)
	Search(ctx context.Context, keyword string) ([]models.Product, error)
	Update(ctx context.Context, id int64, arg repository.UpdateProductParams) (models.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProductHandler struct {
	productService productService
	logger         logger.Logger
}

func NewProduct(s productService, l logger.Logger) *ProductHandler {
	return &ProductHandler{productService: s, logger: l}
}

type productResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Stock        int32           `json:"stock"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Stock:        p.Stock,
		ImageURL:     p.ImageURL,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProductResponses(products []models.Product) []productResponse {
	response := make([]productResponse, 0, len(products))
	for _, p := range products {
		response = append(response, toProductResponse(p))
	}
	return response
}

type productRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int32           `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"imageUrl" validate:"max=500"`
	CategoryID  int64           `json:"categoryId" validate:"required,gt=0"`
}

func (req productRequest) toParams() repository.CreateProductParams {
	return repository.CreateProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	data, err := render.BindAndValidate[productRequest](w, r)
	if err != nil {
		return
	}

	if !data.Price.IsPositive() {
		render.ServiceError(w, "Price must be greater than zero", http.StatusBadRequest)
		return
	}

	product, err := h.productService.Create(r.Context(), data.toParams())
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSONWithStatus(w, toProductResponse(product), http.StatusCreated)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	type PagedResponse struct {
		Data            []productResponse `json:"data"`
		Page            int               `json:"page"`
		Limit           int               `json:"limit"`
		TotalCount      int64             `json:"totalCount"`
		TotalPages      int               `json:"totalPages"`
		HasNextPage     bool              `json:"hasNextPage"`
		HasPreviousPage bool              `json:"hasPreviousPage"`
	}

	filter, err := parseProductFilter(r)
	if err != nil {
		render.ServiceError(w, "Invalid query parameters", http.StatusBadRequest)
		return
	}

	page, err := h.productService.List(r.Context(), filter)
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, PagedResponse{
		Data:            toProductResponses(page.Products),
		Page:            page.Page,
		Limit:           page.Limit,
		TotalCount:      page.TotalCount,
		TotalPages:      page.TotalPages,
		HasNextPage:     page.HasNextPage(),
		HasPreviousPage: page.HasPreviousPage(),
	})
}

func (h *ProductHandler) search(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		render.ServiceError(w, "Search keyword cannot be empty", http.StatusBadRequest)
		return
	}

	products, err := h.productService.Search(r.Context(), keyword)
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, toProductResponses(products))
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, toProductResponse(product))
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, err := render.BindAndValidate[productRequest](w, r)
	if err != nil {
		return
	}

	if !data.Price.IsPositive() {
		render.ServiceError(w, "Price must be greater than zero", http.StatusBadRequest)
		return
	}

	product, err := h.productService.Update(r.Context(), id, data.toParams())
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, toProductResponse(product))
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	type DeleteResponse struct {
		Success bool `json:"success"`
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, DeleteResponse{Success: true})
}

func (h *ProductHandler) renderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrProductNotFound):
		render.ServiceError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		render.ServiceError(w, "Category not found", http.StatusBadRequest)
	default:
		h.logger.Error("product request failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func parseProductFilter(r *http.Request) (repository.ProductFilter, error) {
	var filter repository.ProductFilter
	query := r.URL.Query()

	if v := query.Get("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, err
		}
		filter.CategoryID = &id
	}

	for name, target := range map[string]**decimal.Decimal{
		"minPrice": &filter.MinPrice,
		"maxPrice": &filter.MaxPrice,
	} {
		if v := query.Get(name); v != "" {
			price, err := decimal.NewFromString(v)
			if err != nil {
				return filter, err
			}
			*target = &price
		}
	}

	for name, target := range map[string]*int{
		"page":  &filter.Page,
		"limit": &filter.Limit,
	} {
		if v := query.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return filter, err
			}
			*target = n
		}
	}

	return filter, nil
}
