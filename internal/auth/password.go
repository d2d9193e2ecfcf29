package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/resolvease/complaint-service/internal/domain"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// VerifyPassword reports whether plain matches the user's stored credential.
func VerifyPassword(user *domain.User, plain string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return ComparePassword(user.PasswordHash, plain) == nil
}
