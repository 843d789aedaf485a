package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrLoginDisabled   = errors.New("admin login is not configured")
	ErrInvalidPassword = errors.New("invalid password")
)

// PasswordChecker verifies the shared admin password. A bcrypt hash takes
// precedence over a plain password when both are configured.
type PasswordChecker struct {
	Hash  string
	Plain string
}

func (p PasswordChecker) Check(password string) error {
	hash := strings.TrimSpace(p.Hash)
	if hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			return ErrInvalidPassword
		}
		return nil
	}
	if p.Plain == "" {
		return ErrLoginDisabled
	}
	if subtle.ConstantTimeCompare([]byte(p.Plain), []byte(password)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}
