package auth

import (
	"fmt"

	"travelbooking/internal/domain"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	ErrEmailAlreadyExists = fmt.Errorf("email already exists: %w", domain.ErrConflict)
	ErrUsernameTaken      = fmt.Errorf("username already exists: %w", domain.ErrConflict)
	ErrPasswordMismatch   = fmt.Errorf("password fields didn't match: %w", domain.ErrBadRequest)
)
