package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, user_id, token, revoked, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) error {
	_, err := r.DB.Exec(ctx, saveToken, token.ID, token.UserID, token.Token, token.Revoked, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const getToken = `-- name: GetRefreshToken
SELECT id, user_id, revoked, created_at, expires_at
FROM refresh_tokens
WHERE token = $1
`

// Get token by its string
// Returns the record even if it is revoked or expired already
func (r *RefreshTokenRepo) GetToken(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, tokenString)
	token, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.RefreshToken, error) {
		t := models.RefreshToken{Token: tokenString}
		err := row.Scan(&t.ID, &t.UserID, &t.Revoked, &t.CreatedAt, &t.ExpiresAt)
		return t, err
	})

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

// Get token usable at 'now': stored, not revoked and not expired
func (r *RefreshTokenRepo) GetValidToken(ctx context.Context, tokenString string, now time.Time) (models.RefreshToken, error) {
	token, err := r.GetToken(ctx, tokenString)
	if err != nil {
		return token, err
	}

	switch {
	case token.Revoked:
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenRevoked)
	case !token.ExpiresAt.After(now):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenExpired)
	}

	return token, nil
}

const revokeToken = `-- name: RevokeRefreshToken
UPDATE refresh_tokens
SET revoked = TRUE
WHERE token = $1
`

// Set the revoked flag
// Tokens are never unrevoked so repeating the update is harmless
func (r *RefreshTokenRepo) Revoke(ctx context.Context, tokenString string) (bool, error) {
	tag, err := r.DB.Exec(ctx, revokeToken, tokenString)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
