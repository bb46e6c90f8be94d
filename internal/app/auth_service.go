package app

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mireyav/crescendo/internal/domain"
	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/store"
)

// AuthService handles account registration and password login.
type AuthService struct {
	Repo   *store.DB
	Logger *logger.Logger
}

func NewAuthService(repo *store.DB, log *logger.Logger) *AuthService {
	return &AuthService{Repo: repo, Logger: log.WithComponent("auth")}
}

// Register creates a new account. Returns ErrDuplicate when the email or
// username is already taken.
func (s *AuthService) Register(username, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.Repo.CreateUser(user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	s.Logger.Info("user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Authenticate checks an email/password pair. Returns
// ErrInvalidCredentials on any mismatch, without revealing which part
// failed.
func (s *AuthService) Authenticate(email, password string) (*domain.User, error) {
	user, err := s.Repo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
