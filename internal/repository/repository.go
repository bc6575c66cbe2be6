// Package repository declares the storage ports used by the service layer.
// internal/repository/sqlite provides the implementation; tests use fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/water-tracker/internal/model"
)

type UserRepository interface {
	// CreateUser inserts the user and sets ID and timestamps on it.
	// Returns apperror.ErrConflict if the email or phone is taken.
	CreateUser(ctx context.Context, user *model.User) error
	// ExistsByEmailOrPhone reports whether any user has the given email or
	// the given phone. Empty arguments never match.
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	// FindUserByIdentifier returns the user whose email or phone equals identifier.
	FindUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type IntakeRepository interface {
	// GetIntake returns apperror.ErrNotFound when the day has no record.
	GetIntake(ctx context.Context, userID int64, date time.Time) (*model.WaterIntake, error)
	// UpsertIntake inserts the record or overwrites glasses and liters of the
	// existing one for the same (user, date) in a single statement.
	UpsertIntake(ctx context.Context, intake *model.WaterIntake) error
}

// Pinger is implemented by stores that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
