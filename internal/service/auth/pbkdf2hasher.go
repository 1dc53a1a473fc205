package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	keySize    = 32
	iterations = 10_000
)

// PBKDF2 password hasher
// Stores base64(salt || derived key), so the salt travels with the hash
type PBKDF2Hasher struct {
	// Iteration count for key derivation, defaults to 10000 when zero
	Iterations int
}

func (h PBKDF2Hasher) iters() int {
	if h.Iterations > 0 {
		return h.Iterations
	}
	return iterations
}

func (h PBKDF2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("error while generating salt. Err: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, h.iters(), keySize, sha256.New)

	blob := make([]byte, 0, saltSize+keySize)
	blob = append(blob, salt...)
	blob = append(blob, key...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Compare known hashedPassword and user provided password
// Fails closed: any malformed stored hash compares as a mismatch
func (h PBKDF2Hasher) Compare(hashedPassword string, password string) error {
	blob, err := base64.StdEncoding.DecodeString(hashedPassword)
	if err != nil {
		return fmt.Errorf("malformed password hash: %w", err)
	}
	if len(blob) != saltSize+keySize {
		return errors.New("malformed password hash: wrong length")
	}

	salt, stored := blob[:saltSize], blob[saltSize:]
	key := pbkdf2.Key([]byte(password), salt, h.iters(), keySize, sha256.New)

	if subtle.ConstantTimeCompare(stored, key) != 1 {
		return errors.New("password mismatch")
	}

	return nil
}
