package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotAdmin              = errors.New("email is not an administrator")
	ErrWrongPassword         = errors.New("wrong admin password")
	ErrPasswordNotConfigured = errors.New("admin password hash is not configured")
)

// Admins holds the administrator allow-list and the shared admin password hash.
type Admins struct {
	emails       map[string]bool
	passwordHash []byte
}

func NewAdmins(emails []string, passwordHash string) *Admins {
	a := &Admins{emails: make(map[string]bool, len(emails)), passwordHash: []byte(passwordHash)}
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			a.emails[e] = true
		}
	}
	return a
}

func (a *Admins) IsAdmin(email string) bool {
	return a.emails[normalizeEmail(email)]
}

// CheckPassword verifies password for an allow-listed email.
func (a *Admins) CheckPassword(email, password string) error {
	if !a.IsAdmin(email) {
		return ErrNotAdmin
	}
	if len(a.passwordHash) == 0 {
		return ErrPasswordNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
