package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// BcryptHasher is the default PasswordHasher.
type BcryptHasher struct{}

// Hash implements PasswordHasher.
func (BcryptHasher) Hash(password string) (string, error) {
	return HashPassword(password)
}

// Verify implements PasswordHasher.
func (BcryptHasher) Verify(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

var _ PasswordHasher = BcryptHasher{}
