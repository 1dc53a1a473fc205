package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/handlers/render"
	"github.com/ecomstock/inventory/internal/logger"
	"github.com/ecomstock/inventory/internal/models"
)

type categoryService interface {
	Create(ctx context.Context, name string, description string) (models.Category, error)
	Get(ctx context.Context, id int64) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id int64, name string, description string) (models.Category, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryHandler struct {
	categoryService categoryService
	logger          logger.Logger
}

func NewCategory(s categoryService, l logger.Logger) *CategoryHandler {
	return &CategoryHandler{categoryService: s, logger: l}
}

type categoryResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	ProductCount int64      `json:"productCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func toCategoryResponse(c models.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	data, err := render.BindAndValidate[categoryRequest](w, r)
	if err != nil {
		return
	}

	category, err := h.categoryService.Create(r.Context(), data.Name, data.Description)
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSONWithStatus(w, toCategoryResponse(category), http.StatusCreated)
}

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		h.renderError(w, err)
		return
	}

	response := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		response = append(response, toCategoryResponse(c))
	}

	render.JSON(w, response)
}

func (h *CategoryHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, toCategoryResponse(category))
}

func (h *CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, err := render.BindAndValidate[categoryRequest](w, r)
	if err != nil {
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, data.Name, data.Description)
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, toCategoryResponse(category))
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	type DeleteResponse struct {
		Success bool `json:"success"`
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, DeleteResponse{Success: true})
}

func (h *CategoryHandler) renderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		render.ServiceError(w, "Category not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrCategoryNameTaken):
		render.ServiceError(w, "Category with this name already exists", http.StatusConflict)
	case errors.Is(err, apperrors.ErrCategoryHasProducts):
		render.ServiceError(w, "Cannot delete category with linked products", http.StatusConflict)
	default:
		h.logger.Error("category request failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Parse the {id} path segment, render 404 on garbage
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		render.ServiceError(w, "Not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}
