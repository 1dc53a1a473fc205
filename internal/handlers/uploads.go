package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/handlers/render"
	"github.com/ecomstock/inventory/internal/logger"
)

type uploadService interface {
	SaveImage(file multipart.File, header *multipart.FileHeader, folder string) (string, error)
	DeleteImage(imageURL string) error
}

type UploadHandler struct {
	uploadService uploadService
	logger        logger.Logger

	// Request body cap for the multipart form, slightly above the image size cap
	maxBodyBytes int64
}

func NewUpload(s uploadService, l logger.Logger, maxBodyBytes int64) *UploadHandler {
	return &UploadHandler{uploadService: s, logger: l, maxBodyBytes: maxBodyBytes}
}

func (h *UploadHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	type UploadResponse struct {
		URL string `json:"url"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		render.ServiceError(w, "Image file is required in the 'file' field", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "products"
	}

	urlPath, err := h.uploadService.SaveImage(file, header, folder)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidImageFile):
			render.ServiceError(w, "Invalid image file. Allowed formats: JPG, JPEG, PNG, GIF, WEBP. Max size: 5MB.", http.StatusBadRequest)
		default:
			h.logger.Error("image upload failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, UploadResponse{URL: absoluteURL(r, urlPath)}, http.StatusCreated)
}

func (h *UploadHandler) deleteImage(w http.ResponseWriter, r *http.Request) {
	type DeleteRequest struct {
		URL string `json:"url" validate:"required"`
	}
	type DeleteResponse struct {
		Success bool `json:"success"`
	}

	data, err := render.BindAndValidate[DeleteRequest](w, r)
	if err != nil {
		return
	}

	// Accept both the absolute URL the upload endpoint returned and a bare path
	parsed, err := url.Parse(data.URL)
	if err != nil {
		render.ServiceError(w, "Image not found", http.StatusNotFound)
		return
	}

	if err := h.uploadService.DeleteImage(parsed.Path); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrImageNotFound):
			render.ServiceError(w, "Image not found", http.StatusNotFound)
		default:
			h.logger.Error("image delete failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, DeleteResponse{Success: true})
}

// Build the public URL for a path on this server, the way clients will fetch it
func absoluteURL(r *http.Request, urlPath string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, urlPath)
}
