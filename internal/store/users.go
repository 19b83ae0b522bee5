package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"soundcrate/internal/models"
)

// CreateUser registers a new user with a pre-hashed password.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, about string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || passwordHash == "" {
		return models.User{}, fmt.Errorf("username and password are required")
	}

	var user models.User
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, about)
		VALUES ($1, $2, $3)
		RETURNING id, username, about, avatar, is_active, date_joined
	`, username, passwordHash, about).Scan(
		&user.ID, &user.Username, &user.About, &user.Avatar, &user.IsActive, &user.DateJoined,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// UserUpdate carries the fields of a partial profile update. Nil fields
// are left untouched.
type UserUpdate struct {
	About  *string
	Avatar *string
}

// UpdateUser applies a partial profile update.
func (s *Store) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET about = COALESCE($2, about),
		    avatar = COALESCE($3, avatar)
		WHERE id = $1
		RETURNING id, username, about, avatar, is_active, date_joined
	`, id, upd.About, upd.Avatar).Scan(
		&user.ID, &user.Username, &user.About, &user.Avatar, &user.IsActive, &user.DateJoined,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, about, avatar, is_active, date_joined
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.About, &user.Avatar, &user.IsActive, &user.DateJoined)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UserCredentials returns a user together with the stored password hash
// for login verification.
func (s *Store) UserCredentials(ctx context.Context, username string) (models.User, string, error) {
	var (
		user models.User
		hash string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, about, avatar, is_active, date_joined, password_hash
		FROM users
		WHERE username = $1
	`, username).Scan(
		&user.ID, &user.Username, &user.About, &user.Avatar, &user.IsActive, &user.DateJoined, &hash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("lookup user: %w", err)
	}
	return user, hash, nil
}
