package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized covers unknown accounts, bad passwords and disabled
	// accounts alike so login does not leak which one it was.
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidCredential = errors.New("email and password are required")
)
