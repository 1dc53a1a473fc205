package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ecomstock/inventory/internal/db"
	"github.com/ecomstock/inventory/internal/handlers"
	"github.com/ecomstock/inventory/internal/handlers/middleware"
	"github.com/ecomstock/inventory/internal/logger"
	"github.com/ecomstock/inventory/internal/repository/postgres"
	"github.com/ecomstock/inventory/internal/service/auth"
	"github.com/ecomstock/inventory/internal/service/auth/tokenmanager"
	"github.com/ecomstock/inventory/internal/service/category"
	"github.com/ecomstock/inventory/internal/service/product"
	"github.com/ecomstock/inventory/internal/service/upload"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context) (*ServerApp, error) {
	c := NewConfig()
	if err := c.LoadDotEnv(os.Getwd); err != nil {
		return nil, fmt.Errorf("error while loading .env file. Err: %w", err)
	}
	c.LoadEnv(os.Getenv)
	if err := c.ParseFlags(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("error while parsing flags. Err: %w", err)
	}

	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger. Err: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		Issuer:     c.JWTIssuer,
		Audience:   c.JWTAudience,
		AccessTTL:  time.Duration(c.AccessTokenMinutes) * time.Minute,
		RefreshTTL: time.Duration(c.RefreshTokenDays) * 24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	productService := product.NewService(storage)
	categoryService := category.NewService(storage)
	uploadService := upload.NewService(upload.Config{BaseDir: c.UploadDir})

	// Initialize handlers and the router
	mux := handlers.NewRouter(
		handlers.NewAuth(authService, log),
		handlers.NewProduct(productService, log),
		handlers.NewCategory(categoryService, log),
		handlers.NewUpload(uploadService, log, 6<<20),
		middleware.AuthMiddleware(authService),
		middleware.LoggerMiddleware(log),
		c.UploadDir,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
