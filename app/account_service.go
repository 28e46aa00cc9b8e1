package app

import (
	"context"
	stderrors "errors"
	"log"
	"strings"

	"tabml/domain/core"
	"tabml/internal/errors"
	"tabml/models"
	"tabml/ports"

	"golang.org/x/crypto/bcrypt"
)

// AccountService registers users and checks their credentials
type AccountService struct {
	users ports.UserRepository
	cost  int
}

// NewAccountService creates an account service hashing with bcrypt's default cost
func NewAccountService(users ports.UserRepository) *AccountService {
	return NewAccountServiceWithCost(users, bcrypt.DefaultCost)
}

// NewAccountServiceWithCost creates an account service with a specific bcrypt cost
func NewAccountServiceWithCost(users ports.UserRepository, cost int) *AccountService {
	return &AccountService{users: users, cost: cost}
}

// Signup validates the request, hashes the password and stores the user
func (s *AccountService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if stderrors.Is(err, core.ErrAlreadyExists) {
			return nil, errors.New(errors.CodeAlreadyExists, "Email already exists")
		}
		return nil, errors.Wrap(err, "failed to create user")
	}

	log.Printf("[AccountService] Registered user %s", user.ID)
	return user, nil
}

// Login returns the user whose email and password match. Unknown emails and
// wrong passwords produce the same Unauthorized error.
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, errors.Unauthorized("Invalid email or password")
		}
		return nil, errors.Wrap(err, "failed to look up user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.Unauthorized("Invalid email or password")
	}
	return user, nil
}

// ListUsers returns every registered user
func (s *AccountService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}
