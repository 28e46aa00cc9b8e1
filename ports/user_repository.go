package ports

import (
	"context"

	"tabml/models"
)

// UserRepository defines the interface for account storage
type UserRepository interface {
	// Create stores a new user; a taken email is an AlreadyExists error
	Create(ctx context.Context, user *models.User) error

	// GetByEmail retrieves a user by email; unknown emails are NotFound errors
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns all users, newest first
	List(ctx context.Context) ([]*models.User, error)
}
