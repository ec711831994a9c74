package identity

import (
	"golang.org/x/crypto/bcrypt"

	dErrors "discussly/pkg/domain-errors"
)

const PasswordMinLength = 8

// PasswordHasher abstracts the hashing scheme so the service and its tests
// never touch bcrypt directly.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher is the production hasher.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	raw, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", dErrors.Wrap(dErrors.KindInternal, "hash password", err)
	}
	return string(raw), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return dErrors.New(dErrors.KindUnauthorized, "invalid credentials")
	}
	return nil
}
