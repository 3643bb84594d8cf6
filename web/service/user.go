// Package service implements the application's business logic: credential
// registration and verification, and the retrieval-augmented chat proxy.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ehb/ragchat/database"
	"github.com/ehb/ragchat/database/model"
	"github.com/ehb/ragchat/logger"
	"github.com/ehb/ragchat/util/crypto"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrPasswordTooLong    = errors.New("password is too long")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	insertUserQuery = "INSERT INTO users (username, password_hash) VALUES (?, ?)"
	selectUserQuery = "SELECT id, username, password_hash FROM users WHERE username = ?"
)

// UserService registers users and checks their credentials.
type UserService struct {
	executor *database.Executor
}

func NewUserService(executor *database.Executor) *UserService {
	return &UserService{executor: executor}
}

// Register hashes password and stores a new user.
func (s *UserService) Register(ctx context.Context, username, password string) error {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		if crypto.IsTooLong(err) {
			return ErrPasswordTooLong
		}
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	_, err = s.executor.Execute(ctx, insertUserQuery, true, username, hash)
	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err):
		return ErrDuplicateUsername
	default:
		return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
}

// CheckUser returns the user when password matches the stored hash.
// Unknown users and wrong passwords yield the same ErrInvalidCredentials.
func (s *UserService) CheckUser(ctx context.Context, username, password string) (*model.User, error) {
	rows, err := s.executor.Execute(ctx, selectUserQuery, false, username)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}

	if len(rows) == 0 {
		crypto.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}

	user, err := model.UserFromRecord(rows[0])
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		logger.Debugf("password mismatch for user id %d", user.Id)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
