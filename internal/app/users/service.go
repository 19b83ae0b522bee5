// Package users implements account registration and authentication.
package users

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"soundcrate/internal/auth"
	"soundcrate/internal/media"
	"soundcrate/internal/models"
	"soundcrate/internal/store"
)

// Validation and authentication failures surfaced to the API layer.
var (
	ErrUnauthorized     = errors.New("authentication required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

const minPasswordLength = 8

// Store captures the persistence needs for account workflows.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash, about string) (models.User, error)
	UserCredentials(ctx context.Context, username string) (models.User, string, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	UpdateUser(ctx context.Context, id int64, upd store.UserUpdate) (models.User, error)
}

// Tokens issues and verifies bearer tokens.
type Tokens interface {
	Generate(userID int64) (string, error)
	Verify(token string) (int64, error)
}

// Files writes uploaded bytes into date-partitioned directories.
type Files interface {
	AvatarImageDir() (string, error)
	Save(dir, filename string, data []byte) (string, error)
}

// Processor transforms uploaded image bytes.
type Processor interface {
	ResizeImage(src []byte, width, height int) ([]byte, error)
}

// UpdateInput carries a partial profile update. Nil fields are left
// untouched; a non-empty Avatar replaces the stored avatar image.
type UpdateInput struct {
	About      *string
	Avatar     []byte
	AvatarName string
}

// Service exposes account workflows.
type Service interface {
	Signup(ctx context.Context, username, password, about string) (models.User, error)
	Login(ctx context.Context, username, password string) (string, models.User, error)
	ByToken(ctx context.Context, token string) (models.User, error)
	Update(ctx context.Context, user models.User, in UpdateInput) (models.User, error)
}

type service struct {
	store  Store
	tokens Tokens
	files  Files
	proc   Processor
}

// New wires a Service backed by the provided Store, token issuer and
// media collaborators.
func New(st Store, tokens Tokens, files Files, proc Processor) Service {
	return &service{store: st, tokens: tokens, files: files, proc: proc}
}

func (s *service) Signup(ctx context.Context, username, password, about string) (models.User, error) {
	if len(password) < minPasswordLength {
		return models.User{}, ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.store.CreateUser(ctx, strings.TrimSpace(username), hash, about)
}

func (s *service) Login(ctx context.Context, username, password string) (string, models.User, error) {
	user, hash, err := s.store.UserCredentials(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", models.User{}, err
	}
	if !auth.VerifyPassword(password, hash) {
		return "", models.User{}, store.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", models.User{}, ErrUnauthorized
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", models.User{}, err
	}
	return token, user, nil
}

func (s *service) ByToken(ctx context.Context, token string) (models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return models.User{}, ErrUnauthorized
	}

	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrUserNotFound) {
		return models.User{}, ErrUnauthorized
	}
	if err != nil {
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, ErrUnauthorized
	}
	return user, nil
}

func (s *service) Update(ctx context.Context, user models.User, in UpdateInput) (models.User, error) {
	upd := store.UserUpdate{About: in.About}

	if len(in.Avatar) > 0 {
		resized, err := s.proc.ResizeImage(in.Avatar, media.AvatarImageSize, media.AvatarImageSize)
		if err != nil {
			return models.User{}, fmt.Errorf("resize avatar: %w", err)
		}

		dir, err := s.files.AvatarImageDir()
		if err != nil {
			return models.User{}, err
		}

		stem := strings.TrimSuffix(filepath.Base(in.AvatarName), filepath.Ext(in.AvatarName))
		if stem == "" || stem == "." {
			stem = "avatar"
		}
		path, err := s.files.Save(dir, stem+".jpg", resized)
		if err != nil {
			return models.User{}, err
		}
		upd.Avatar = &path
	}

	return s.store.UpdateUser(ctx, user.ID, upd)
}
