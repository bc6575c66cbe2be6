// Package service contains the business logic layer of the application.
//
// The layers are:
//
//	Handler (HTTP layer)     → decodes requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services take repository interfaces, never *sqlite.DB, so tests inject
// in-memory fakes. They return apperror values; handlers pick status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/water-tracker/internal/apperror"
	"github.com/sakif/water-tracker/internal/auth"
	"github.com/sakif/water-tracker/internal/model"
	"github.com/sakif/water-tracker/internal/repository"
)

// MsgInvalidCredentials is returned for every failed login, whatever the cause.
const MsgInvalidCredentials = "Invalid credentials"

// MsgUserExists is returned when the email or phone is already registered.
const MsgUserExists = "User already exists"

// AccountService handles registration, login and password reset.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with all required dependencies.
func NewAccountService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account. At least one of email and phone is required,
// and neither may belong to an existing user.
func (s *AccountService) Register(ctx context.Context, email, phone, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	if email == "" && phone == "" {
		return nil, apperror.ValidationFailed("email", "Email or phone number is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "Password is required")
	}

	exists, err := s.users.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, fmt.Errorf("service/account: checking existing user: %w", err)
	}
	if exists {
		return nil, apperror.Conflict(MsgUserExists)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
	}

	user := &model.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// A concurrent registration can win between the check and the insert.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict(MsgUserExists)
		}
		return nil, fmt.Errorf("service/account: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

// Login checks identifier (an email or a phone) and password.
// Unknown identifiers and wrong passwords fail with the same Unauthorized error.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.users.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("service/account: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			// A stored hash bcrypt cannot parse; still a failed login for the caller.
			s.logger.Error("unreadable password hash",
				slog.Int64("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return user, nil
}

// ResetPassword sets a new password for the user owning phone.
func (s *AccountService) ResetPassword(ctx context.Context, phone, newPassword string) error {
	phone = strings.TrimSpace(phone)

	user, err := s.users.FindUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &apperror.AppError{Err: apperror.ErrNotFound, Message: "User not found"}
		}
		return fmt.Errorf("service/account: looking up phone: %w", err)
	}

	if newPassword == "" {
		return apperror.ValidationFailed("new_password", "New password is required")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("new_password", "Password must be 72 bytes or fewer")
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("service/account: updating password for user %d: %w", user.ID, err)
	}

	s.logger.Info("password reset", slog.Int64("userID", user.ID))
	return nil
}
