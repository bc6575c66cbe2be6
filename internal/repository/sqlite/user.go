package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/water-tracker/internal/apperror"
	"github.com/sakif/water-tracker/internal/model"
	"github.com/sakif/water-tracker/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, phone, password_hash, created_at, updated_at`

// CreateUser inserts a new user and fills in ID, CreatedAt and UpdatedAt.
//
// The UNIQUE constraints on email and phone are the final arbiter: if a
// concurrent registration wins the race after the service's existence check,
// the insert fails here and is reported as a conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, phone, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		nullIfEmpty(user.Email),
		nullIfEmpty(user.Phone),
		user.PasswordHash,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("user already exists: %s", identifierOf(user)))
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// ExistsByEmailOrPhone reports whether a user already holds either identifier.
// NULL never equals anything in SQL, so empty arguments (stored as NULL) never match.
func (db *DB) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ? OR phone = ?)`,
		nullIfEmpty(email),
		nullIfEmpty(phone),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking existing user: %w", err)
	}
	return exists, nil
}

// FindUserByIdentifier looks a user up by email or phone.
// Returns apperror.ErrNotFound if neither column matches.
func (db *DB) FindUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if identifier == "" {
		return nil, apperror.NotFound("user", "empty identifier")
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE email = ? OR phone = ?
		 ORDER BY id
		 LIMIT 1`,
		identifier, identifier,
	)
	return scanUser(row, identifier)
}

// FindUserByPhone returns apperror.ErrNotFound if no user has that phone.
func (db *DB) FindUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	if phone == "" {
		return nil, apperror.NotFound("user", "empty phone")
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = ?`,
		phone,
	)
	return scanUser(row, phone)
}

// UpdatePassword replaces a user's password hash.
func (db *DB) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash,
		time.Now().UTC(),
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %d: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", fmt.Sprint(userID))
	}
	return nil
}

func scanUser(row *sql.Row, key string) (*model.User, error) {
	var (
		u     model.User
		email sql.NullString
		phone sql.NullString
	)
	err := row.Scan(&u.ID, &email, &phone, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("sqlite: scanning user %s: %w", key, err)
	}
	u.Email = email.String
	u.Phone = phone.String
	return &u, nil
}

func identifierOf(u *model.User) string {
	if u.Email != "" {
		return u.Email
	}
	return u.Phone
}
