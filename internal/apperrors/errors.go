package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email or username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token is revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryNameTaken   = errors.New("category with this name already exists")
	ErrCategoryHasProducts = errors.New("category has linked products")

	ErrProductNotFound = errors.New("product not found")

	ErrInvalidImageFile = errors.New("invalid image file")
	ErrImageNotFound    = errors.New("image not found")
)
