package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/ecomstock/inventory/internal/apperrors"
)

const (
	defaultBaseDir  = "uploads"
	defaultMaxBytes = 5 << 20 // 5MB
	defaultMaxWidth = 1600

	// URL prefix the router serves the base dir under
	URLPrefix = "/uploads/"
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type Config struct {
	// Directory uploaded files are stored in, created on demand
	BaseDir string

	// Upload size cap in bytes
	MaxBytes int64

	// Images wider than this are downscaled before saving
	MaxWidth int
}

// Image upload service
// Files land under <BaseDir>/<folder>/<uuid><ext> and are addressed by /uploads/... URLs
type UploadService struct {
	baseDir  string
	maxBytes int64
	maxWidth int
}

func NewService(cfg Config) *UploadService {
	if cfg.BaseDir == "" {
		cfg.BaseDir = defaultBaseDir
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.MaxWidth == 0 {
		cfg.MaxWidth = defaultMaxWidth
	}

	return &UploadService{
		baseDir:  cfg.BaseDir,
		maxBytes: cfg.MaxBytes,
		maxWidth: cfg.MaxWidth,
	}
}

func (s *UploadService) BaseDir() string {
	return s.baseDir
}

// Save the uploaded image and return its URL path
// Rejects files with unknown extension or content type and files over the size cap
func (s *UploadService) SaveImage(file multipart.File, header *multipart.FileHeader, folder string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("extension %q is not allowed: %w", ext, apperrors.ErrInvalidImageFile)
	}

	if declared := header.Header.Get("Content-Type"); declared != "" && !strings.EqualFold(declared, contentType) &&
		!strings.EqualFold(declared, "image/jpg") {
		return "", fmt.Errorf("content type %q is not allowed: %w", declared, apperrors.ErrInvalidImageFile)
	}

	if header.Size > s.maxBytes {
		return "", fmt.Errorf("file is larger than %d bytes: %w", s.maxBytes, apperrors.ErrInvalidImageFile)
	}

	dir := filepath.Join(s.baseDir, sanitizeFolder(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error while creating upload dir. Err: %w", err)
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("error while creating file. Err: %w", err)
	}

	// LimitReader guards against a lying Content-Length
	_, err = io.Copy(out, io.LimitReader(file, s.maxBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("error while writing file. Err: %w", err)
	}

	if fi, err := os.Stat(dst); err == nil && fi.Size() > s.maxBytes {
		_ = os.Remove(dst)
		return "", fmt.Errorf("file is larger than %d bytes: %w", s.maxBytes, apperrors.ErrInvalidImageFile)
	}

	s.shrinkOversized(dst)

	return path.Join(URLPrefix, sanitizeFolder(folder), name), nil
}

// Downscale images wider than maxWidth, best effort
// Formats imaging cannot decode (webp) are stored as uploaded
func (s *UploadService) shrinkOversized(dst string) {
	img, err := imaging.Open(dst)
	if err != nil {
		return
	}

	if img.Bounds().Dx() <= s.maxWidth {
		return
	}

	img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	_ = imaging.Save(img, dst)
}

// Delete a previously uploaded image by its URL path
func (s *UploadService) DeleteImage(imageURL string) error {
	rel, ok := strings.CutPrefix(path.Clean(imageURL), URLPrefix)
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("url %q is not an upload: %w", imageURL, apperrors.ErrImageNotFound)
	}

	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return fmt.Errorf("repo error: %w", apperrors.ErrImageNotFound)
	default:
		return fmt.Errorf("error while removing file. Err: %w", err)
	}
}

// Keep folder a single flat path element
func sanitizeFolder(folder string) string {
	folder = filepath.Base(filepath.Clean(folder))
	if folder == "." || folder == string(filepath.Separator) {
		return "products"
	}
	return folder
}
