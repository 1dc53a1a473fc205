package handlers

import (
	"net/http"

	"github.com/ecomstock/inventory/internal/service/upload"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth *AuthHandler,
	products *ProductHandler,
	categories *CategoryHandler,
	uploads *UploadHandler,
	authMiddleware func(http.Handler) http.Handler,
	loggerMiddleware func(http.Handler) http.Handler,
	uploadDir string,
) http.Handler {
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	api.HandleFunc("POST /auth/register", auth.register)
	api.HandleFunc("POST /auth/login", auth.login)
	api.HandleFunc("POST /auth/refresh", auth.refresh)
	api.Handle("POST /auth/logout", withAuth(auth.logout))

	api.Handle("POST /products", withAuth(products.create))
	api.Handle("GET /products", withAuth(products.list))
	api.Handle("GET /products/search", withAuth(products.search))
	api.Handle("GET /products/{id}", withAuth(products.get))
	api.Handle("PUT /products/{id}", withAuth(products.update))
	api.Handle("DELETE /products/{id}", withAuth(products.delete))

	api.Handle("POST /categories", withAuth(categories.create))
	api.Handle("GET /categories", withAuth(categories.list))
	api.Handle("GET /categories/{id}", withAuth(categories.get))
	api.Handle("PUT /categories/{id}", withAuth(categories.update))
	api.Handle("DELETE /categories/{id}", withAuth(categories.delete))

	api.Handle("POST /uploads/image", withAuth(uploads.uploadImage))
	api.Handle("DELETE /uploads/image", withAuth(uploads.deleteImage))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("GET "+upload.URLPrefix, http.StripPrefix(upload.URLPrefix, http.FileServer(http.Dir(uploadDir))))

	return chain(root, loggerMiddleware)
}
