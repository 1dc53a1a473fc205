package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/models"
	"github.com/ecomstock/inventory/internal/repository/postgres"
	"github.com/ecomstock/inventory/internal/service/auth/tokenmanager"
	"github.com/ecomstock/inventory/internal/testutil"
)

func Test_NewService(t *testing.T) {
	t.Parallel()

	tm, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"})
	require.NoError(t, err)

	t.Run("fail without token manager", func(t *testing.T) {
		_, err := NewService(Config{}, nil, &postgres.Storage{})
		require.Error(t, err)
	})

	t.Run("fail without storage", func(t *testing.T) {
		_, err := NewService(Config{}, tm, nil)
		require.Error(t, err)
	})
}

func Test_AuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Fast hasher so the suite does not spend its time in PBKDF2
	hasher := PBKDF2Hasher{Iterations: 10}

	newService := func(t *testing.T, tx pgx.Tx) *AuthService {
		tm, err := tokenmanager.New(tokenmanager.Config{
			SecretKey:  "test-secret-key",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		})
		require.NoError(t, err)

		service, err := NewService(Config{Hasher: hasher}, tm, postgres.NewStorage(tx))
		require.NoError(t, err)
		return service
	}

	t.Run("register ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			pair, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")

			require.NoError(t, err)
			assert.NotEmpty(t, pair.Access.Value)
			assert.NotEmpty(t, pair.Refresh.Value)

			userRepo := &postgres.UserRepo{DB: tx}
			user, err := userRepo.GetUserByEmail(t.Context(), "alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.True(t, user.IsActive)
			assert.NotEqual(t, "sup3r-secret", user.PasswordHash, "password must not be stored in plaintext")
			assert.NoError(t, hasher.Compare(user.PasswordHash, "sup3r-secret"))
		})
	})

	t.Run("register duplicate email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			_, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")
			require.NoError(t, err)

			_, err = service.Register(t.Context(), "another-alice", "alice@example.com", "sup3r-secret")
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("register duplicate username fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			_, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")
			require.NoError(t, err)

			_, err = service.Register(t.Context(), "alice", "other-alice@example.com", "sup3r-secret")
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("login ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			_, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")
			require.NoError(t, err)

			pair, err := service.Login(t.Context(), "alice@example.com", "sup3r-secret")

			require.NoError(t, err)
			assert.NotEmpty(t, pair.Access.Value)
			assert.NotEmpty(t, pair.Refresh.Value)
		})
	})

	t.Run("login wrong password and unknown email are indistinguishable", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			_, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")
			require.NoError(t, err)

			_, wrongPasswordErr := service.Login(t.Context(), "alice@example.com", "wrong-password")
			_, unknownEmailErr := service.Login(t.Context(), "nobody@example.com", "sup3r-secret")

			require.ErrorIs(t, wrongPasswordErr, apperrors.ErrInvalidCredentials)
			require.ErrorIs(t, unknownEmailErr, apperrors.ErrInvalidCredentials)
			assert.Equal(t, wrongPasswordErr.Error(), unknownEmailErr.Error())
		})
	})

	t.Run("refresh rotates token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			pair, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")
			require.NoError(t, err)

			rotated, err := service.Refresh(t.Context(), pair.Refresh.Value)

			require.NoError(t, err)
			assert.NotEqual(t, pair.Refresh.Value, rotated.Refresh.Value, "rotation should mint a new refresh token")

			refreshRepo := &postgres.RefreshTokenRepo{DB: tx}
			old, err := refreshRepo.GetToken(t.Context(), pair.Refresh.Value)
			require.NoError(t, err)
			assert.True(t, old.Revoked, "presented token should be revoked after rotation")
		})
	})

	t.Run("refresh replay fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			pair, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")
			require.NoError(t, err)

			_, err = service.Refresh(t.Context(), pair.Refresh.Value)
			require.NoError(t, err)

			_, err = service.Refresh(t.Context(), pair.Refresh.Value)
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenRevoked)
		})
	})

	t.Run("refresh unknown token fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			_, err := service.Refresh(t.Context(), "never-issued-token")
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("refresh expired token fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			pair, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")
			require.NoError(t, err)

			userRepo := &postgres.UserRepo{DB: tx}
			user, err := userRepo.GetUserByEmail(t.Context(), "alice@example.com")
			require.NoError(t, err)

			refreshRepo := &postgres.RefreshTokenRepo{DB: tx}
			err = refreshRepo.Save(t.Context(), models.RefreshToken{
				ID:        uuid.New(),
				UserID:    user.ID,
				Token:     "long-expired-token",
				CreatedAt: time.Now().Add(-48 * time.Hour),
				ExpiresAt: time.Now().Add(-24 * time.Hour),
			})
			require.NoError(t, err)

			_, err = service.Refresh(t.Context(), "long-expired-token")
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)

			// The freshly issued one still works
			_, err = service.Refresh(t.Context(), pair.Refresh.Value)
			require.NoError(t, err)
		})
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			pair, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")
			require.NoError(t, err)

			require.NoError(t, service.Logout(t.Context(), pair.Refresh.Value))

			_, err = service.Refresh(t.Context(), pair.Refresh.Value)
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenRevoked)
		})
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			require.NoError(t, service.Logout(t.Context(), "never-issued-token"))
			require.NoError(t, service.Logout(t.Context(), "never-issued-token"))
		})
	})

	t.Run("validate access resolves the user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			pair, err := service.Register(t.Context(), "alice", "alice@example.com", "sup3r-secret")
			require.NoError(t, err)

			user, err := service.ValidateAccess(t.Context(), pair.Access.Value)

			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, "alice@example.com", user.Email)
		})
	})

	t.Run("validate access fails on garbage", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service := newService(t, tx)

			_, err := service.ValidateAccess(t.Context(), "not-a-jwt")
			require.Error(t, err)
		})
	})
}
