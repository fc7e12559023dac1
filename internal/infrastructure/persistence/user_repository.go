package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lqor/igorforce/internal/domain/models"
)

// UserRepository persists REST-surface users.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Insert writes a new user
func (r *UserRepository) Insert(ctx context.Context, q DBTX, user *models.User) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash) VALUES (?, ?, ?, ?)",
		user.ID, user.Email, user.Name, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByEmail returns the user with the given email, or nil when absent
func (r *UserRepository) GetByEmail(ctx context.Context, q DBTX, email string) (*models.User, error) {
	row := q.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash FROM users WHERE email = ?", email)

	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context, q DBTX) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
