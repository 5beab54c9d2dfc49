package credentials

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the fixed bcrypt work factor.
const hashCost = 10

// HashPassword hashes a plaintext password with bcrypt. The plaintext
// is never stored or logged.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("credentials: empty password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
