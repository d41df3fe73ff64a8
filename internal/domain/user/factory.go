package user

import (
	"time"

	"github.com/google/uuid"
)

// New builds a signup-shaped account: role and status are forced to
// their defaults regardless of what the caller asked for.
func New(fullName, email, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
