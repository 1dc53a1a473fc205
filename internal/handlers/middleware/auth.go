package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ecomstock/inventory/internal/handlers/render"
	"github.com/ecomstock/inventory/internal/handlers/userctx"
	"github.com/ecomstock/inventory/internal/models"
)

type authService interface {
	// Validate the access token and resolve its user
	ValidateAccess(ctx context.Context, access string) (models.User, error)
}

// AuthMiddleware gates requests on a valid bearer access token
// The resolved user lands in the request context
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := as.ValidateAccess(r.Context(), access)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
