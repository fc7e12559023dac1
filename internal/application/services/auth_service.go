package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/internal/infrastructure/database"
	"github.com/lqor/igorforce/internal/infrastructure/persistence"
	"github.com/lqor/igorforce/pkg/auth"
	"github.com/lqor/igorforce/pkg/errors"
	"github.com/lqor/igorforce/pkg/utils"
)

// AuthService handles login and user provisioning
type AuthService struct {
	mu    sync.RWMutex
	db    *sql.DB
	users *persistence.UserRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(conn *database.Connection) *AuthService {
	return &AuthService{
		db:    conn.DB(),
		users: persistence.NewUserRepository(),
	}
}

// LoginResult carries the session token and the authenticated user
type LoginResult struct {
	Token string            `json:"token"`
	User  *auth.UserSession `json:"user"`
}

// Login verifies credentials and issues a session token. Bad email and bad
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, err := s.users.GetByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	session := &auth.UserSession{ID: user.ID, Name: user.Name, Email: user.Email}
	token, err := auth.GenerateToken(*session)
	if err != nil {
		return nil, errors.NewInternalError("failed to issue token", err)
	}
	return &LoginResult{Token: token, User: session}, nil
}

// EnsureUser creates a user with the given credentials if no user with
// that email exists yet. Used to seed the initial admin account.
func (s *AuthService) EnsureUser(ctx context.Context, name, email, password string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !auth.IsValidEmail(email) {
		return nil, errors.NewValidationError("email", "invalid email address")
	}

	existing, err := s.users.GetByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}
	user := &models.User{
		ID:           utils.GenerateID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.users.Insert(ctx, s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}
