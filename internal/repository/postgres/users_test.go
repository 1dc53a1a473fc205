package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/repository"
	"github.com/ecomstock/inventory/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	aliceParams := repository.CreateUserParams{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed_password",
	}

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}

			user, err := repo.CreateUser(t.Context(), aliceParams)

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID, "id should be generated")
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, "alice@example.com", user.Email)
			assert.Equal(t, "hashed_password", user.PasswordHash)
			assert.True(t, user.IsActive, "fresh users are active")
			assert.False(t, user.CreatedAt.IsZero())
			assert.Nil(t, user.UpdatedAt)
		})
	})

	t.Run("create duplicate username fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}

			_, err := repo.CreateUser(t.Context(), aliceParams)
			require.NoError(t, err)

			_, err = repo.CreateUser(t.Context(), repository.CreateUserParams{
				Username:     "alice",
				Email:        "other@example.com",
				PasswordHash: "hashed_password",
			})
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("create duplicate email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}

			_, err := repo.CreateUser(t.Context(), aliceParams)
			require.NoError(t, err)

			_, err = repo.CreateUser(t.Context(), repository.CreateUserParams{
				Username:     "other",
				Email:        "alice@example.com",
				PasswordHash: "hashed_password",
			})
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get user by id", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}

			created, err := repo.CreateUser(t.Context(), aliceParams)
			require.NoError(t, err)

			user, err := repo.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, user)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}

			_, err := repo.GetUserByID(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("get user by email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}

			created, err := repo.CreateUser(t.Context(), aliceParams)
			require.NoError(t, err)

			user, err := repo.GetUserByEmail(t.Context(), "alice@example.com")

			require.NoError(t, err)
			assert.Equal(t, created.ID, user.ID)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}

			_, err := repo.GetUserByEmail(t.Context(), "nobody@example.com")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("get user by email or username matches either", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}

			created, err := repo.CreateUser(t.Context(), aliceParams)
			require.NoError(t, err)

			byEmail, err := repo.GetUserByEmailOrUsername(t.Context(), "alice@example.com", "no-such-user")
			require.NoError(t, err)
			assert.Equal(t, created.ID, byEmail.ID)

			byUsername, err := repo.GetUserByEmailOrUsername(t.Context(), "nobody@example.com", "alice")
			require.NoError(t, err)
			assert.Equal(t, created.ID, byUsername.ID)

			_, err = repo.GetUserByEmailOrUsername(t.Context(), "nobody@example.com", "no-such-user")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
