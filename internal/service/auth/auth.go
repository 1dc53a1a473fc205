package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecomstock/inventory/internal/apperrors"
	"github.com/ecomstock/inventory/internal/models"
	"github.com/ecomstock/inventory/internal/repository"
	"github.com/ecomstock/inventory/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during registration or login
	// PBKDF2Hasher with defaults if not set
	Hasher PasswordHasher
}

type AuthService struct {
	// Manager to issue and validate token pairs
	token *tokenmanager.TokenManager

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Long term data access
	storage repository.Storage

	// Hash compared against when the user does not exist
	// Keeps the login timing the same for unknown emails and wrong passwords
	decoyHash string
}

func NewService(cfg Config, tm *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = PBKDF2Hasher{}
	}

	if tm == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	decoyHash, err := hasher.Hash("decoy-password-never-matches")
	if err != nil {
		return nil, fmt.Errorf("error while preparing decoy hash. Err: %w", err)
	}

	return &AuthService{
		token:     tm,
		hasher:    hasher,
		storage:   storage,
		decoyHash: decoyHash,
	}, nil
}

// Register new user and issue the first token pair
// Duplicate email or username returns apperrors.ErrUserAlreadyExists,
// whether caught by the pre-check or by the storage uniqueness constraint
func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	_, err := s.storage.User().GetUserByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		return pair, apperrors.ErrUserAlreadyExists
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return pair, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return pair, fmt.Errorf("can't use this as password, error=%w", err)
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		user, err := st.User().CreateUser(ctx, repository.CreateUserParams{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}

		pair, err = s.token.GeneratePair(ctx, st.Refresh(), user)
		return err
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Login with email and password
// Unknown email and wrong password are indistinguishable to the caller
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		// Burn the same amount of time as a real comparison would
		_ = s.hasher.Compare(s.decoyHash, password)
		return pair, apperrors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	pair, err = s.token.GeneratePair(ctx, s.storage.Refresh(), user)
	if err != nil {
		return pair, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return pair, nil
}

// Rotate the refresh token: revoke the presented one and issue a fresh pair
// Revocation and the new token are committed in a single transaction
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		token, err := st.Refresh().GetValidToken(ctx, refresh, time.Now())
		if err != nil {
			return err
		}

		user, err := st.User().GetUserByID(ctx, token.UserID)
		if err != nil {
			return err
		}

		if _, err := st.Refresh().Revoke(ctx, refresh); err != nil {
			return err
		}

		pair, err = s.token.GeneratePair(ctx, st.Refresh(), user)
		return err
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Revoke the refresh token if it is known
// Idempotent: unknown or already revoked tokens are not an error
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	_, err := s.storage.Refresh().Revoke(ctx, refresh)
	return err
}

// Validate the access token and resolve its user
func (s *AuthService) ValidateAccess(ctx context.Context, access string) (models.User, error) {
	claims, err := s.token.ParseAccess(access)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.storage.User().GetUserByID(ctx, claims.UserID)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *AuthService) RefreshTTL() time.Duration {
	return s.token.RefreshTTL()
}
