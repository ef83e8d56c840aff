package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var (
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordNumeric    = errors.New("password cannot be entirely numeric")
	ErrPasswordLikeUser   = errors.New("password is too similar to the username")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes long")
	errPasswordHashFailed = errors.New("failed to hash password")
)

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Join(errPasswordHashFailed, err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares password against a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword applies the password strength rules. username may be empty.
func ValidatePassword(password, username string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		return ErrPasswordNumeric
	}
	if username != "" && strings.EqualFold(password, username) {
		return ErrPasswordLikeUser
	}
	return nil
}
