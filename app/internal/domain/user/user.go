package user

import (
	"context"
	"strings"
)

// User is a storefront account. Accounts are maintained outside this
// service; the cart only reads them to log shoppers in.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
}

// Username is the identity shown on purchase notifications.
func (u *User) Username() string {
	return u.Email
}

// CanLogIn reports whether the account may start a checkout session.
func (u *User) CanLogIn() bool {
	return u.IsActive && u.PasswordHash != ""
}

// NormalizeEmail is the lookup form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
