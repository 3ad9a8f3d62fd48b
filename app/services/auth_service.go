package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/repositories"
	"github.com/shashiranjanraj/ordertrack/pkg/apperr"
	"github.com/shashiranjanraj/ordertrack/pkg/auth"
)

// AuthService handles signup and login.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Signup creates a customer account with its default notification
// preference. A taken email returns apperr.ErrConflict.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and issues a bearer token. Unknown email,
// wrong password and deactivated account all return the same
// apperr.ErrUnauthenticated so the response does not leak which one it was.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.ErrUnauthenticated
		}
		return "", err
	}
	if !user.IsActive {
		return "", apperr.ErrUnauthenticated
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", apperr.ErrUnauthenticated
	}

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
