package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tabml/domain/core"
	"tabml/models"
	"tabml/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code for a duplicate key
const uniqueViolation = "23505"

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create inserts the user, assigning a new ID
func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := r.db.GetContext(ctx, &user.CreatedAt, `
		INSERT INTO users (id, name, email, mobile, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, user.ID, user.Name, user.Email, user.Mobile, user.PasswordHash)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: email %s", core.ErrAlreadyExists, user.Email)
		}
		return err
	}
	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, name, email, mobile, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users without loading anything beyond the row
func (r *UserRepositoryImpl) List(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT id, name, email, mobile, password_hash, created_at
		FROM users
		ORDER BY created_at DESC
	`)
	return users, err
}
