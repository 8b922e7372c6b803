package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"portfolio/api/models"
)

// uniqueViolation is the Postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts a new admin user.
func (s *UserStore) CreateUser(ctx context.Context, username string, passwordHash []byte) (*models.AdminUser, error) {
	user := &models.AdminUser{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	query := `
		INSERT INTO admin_users (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at;
	`
	err := s.db.QueryRowContext(ctx, query, user.ID, username, passwordHash).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("user %q: %w", username, ErrUserExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	user := &models.AdminUser{}
	query := `
		SELECT id, username, password_hash, created_at, last_login
		FROM admin_users
		WHERE username = $1;
	`
	var lastLogin sql.NullTime
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		user.LastLogin = &t
	}
	return user, nil
}

func (s *UserStore) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	return s.updateOne(ctx, `UPDATE admin_users SET last_login = $2 WHERE username = $1`, username, at)
}

func (s *UserStore) UpdatePassword(ctx context.Context, username string, passwordHash []byte) error {
	return s.updateOne(ctx, `UPDATE admin_users SET password_hash = $2 WHERE username = $1`, username, passwordHash)
}

func (s *UserStore) updateOne(ctx context.Context, query, username string, value any) error {
	res, err := s.db.ExecContext(ctx, query, username, value)
	if err != nil {
		return fmt.Errorf("failed to update user %q: %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %q: %w", username, ErrUserNotFound)
	}
	return nil
}
