package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/water-tracker/internal/apperror"
	"github.com/sakif/water-tracker/internal/model"
)

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, email, phone string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: "$2a$04$not-a-real-hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Email: "a@example.com", Phone: "+15550100", PasswordHash: "hash"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == 0 {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestCreateUser_AssignsIncreasingIDs(t *testing.T) {
	db := newTestDB(t)

	first := createTestUser(t, db, "one@example.com", "")
	second := createTestUser(t, db, "two@example.com", "")

	if second.ID <= first.ID {
		t.Errorf("second ID %d should be greater than first ID %d", second.ID, first.ID)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup@example.com", "+15550101")

	err := db.CreateUser(context.Background(), &model.User{
		Email: "dup@example.com", Phone: "+15550102", PasswordHash: "h",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
	}
}

func TestCreateUser_DuplicatePhone(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "", "+15550103")

	err := db.CreateUser(context.Background(), &model.User{Phone: "+15550103", PasswordHash: "h"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
	}
}

func TestCreateUser_ManyUsersWithoutEmail(t *testing.T) {
	db := newTestDB(t)

	// Empty emails are stored as NULL, which UNIQUE does not compare.
	createTestUser(t, db, "", "+15550104")
	createTestUser(t, db, "", "+15550105")
}

func TestCreateUser_RequiresAnIdentifier(t *testing.T) {
	db := newTestDB(t)

	err := db.CreateUser(context.Background(), &model.User{PasswordHash: "h"})
	if err == nil {
		t.Fatal("CreateUser() should fail the CHECK constraint without email and phone")
	}
}

// =========================================================================
// EXISTS TESTS
// =========================================================================

func TestExistsByEmailOrPhone(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "taken@example.com", "+15550106")

	tests := []struct {
		name  string
		email string
		phone string
		want  bool
	}{
		{"same email", "taken@example.com", "+19990000", true},
		{"same phone", "other@example.com", "+15550106", true},
		{"neither", "other@example.com", "+19990000", false},
		{"empty phone does not match", "other@example.com", "", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ExistsByEmailOrPhone(context.Background(), tt.email, tt.phone)
			if err != nil {
				t.Fatalf("ExistsByEmailOrPhone() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExistsByEmailOrPhone(%q, %q) = %v, want %v", tt.email, tt.phone, got, tt.want)
			}
		})
	}
}

// =========================================================================
// FIND TESTS
// =========================================================================

func TestFindUserByIdentifier(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "find@example.com", "+15550107")

	for _, identifier := range []string{"find@example.com", "+15550107"} {
		t.Run(identifier, func(t *testing.T) {
			found, err := db.FindUserByIdentifier(context.Background(), identifier)
			if err != nil {
				t.Fatalf("FindUserByIdentifier() error = %v", err)
			}
			if found.ID != created.ID {
				t.Errorf("ID = %d, want %d", found.ID, created.ID)
			}
			if found.Email != "find@example.com" || found.Phone != "+15550107" {
				t.Errorf("identifiers = (%q, %q), want (find@example.com, +15550107)", found.Email, found.Phone)
			}
			if found.PasswordHash != created.PasswordHash {
				t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, created.PasswordHash)
			}
		})
	}
}

func TestFindUserByIdentifier_NullPhoneReadsAsEmpty(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "nophone@example.com", "")

	found, err := db.FindUserByIdentifier(context.Background(), "nophone@example.com")
	if err != nil {
		t.Fatalf("FindUserByIdentifier() error = %v", err)
	}
	if found.Phone != "" {
		t.Errorf("Phone = %q, want empty", found.Phone)
	}
}

func TestFindUserByIdentifier_NotFound(t *testing.T) {
	db := newTestDB(t)

	for _, identifier := range []string{"ghost@example.com", ""} {
		_, err := db.FindUserByIdentifier(context.Background(), identifier)
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("FindUserByIdentifier(%q) error = %v, want ErrNotFound", identifier, err)
		}
	}
}

func TestFindUserByPhone(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "p@example.com", "+15550108")

	found, err := db.FindUserByPhone(context.Background(), "+15550108")
	if err != nil {
		t.Fatalf("FindUserByPhone() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}

	// Email is not a phone.
	if _, err := db.FindUserByPhone(context.Background(), "p@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindUserByPhone(email) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE PASSWORD TESTS
// =========================================================================

func TestUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "pw@example.com", "")

	if err := db.UpdatePassword(context.Background(), created.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	found, err := db.FindUserByIdentifier(context.Background(), "pw@example.com")
	if err != nil {
		t.Fatalf("FindUserByIdentifier() error = %v", err)
	}
	if found.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, "new-hash")
	}
}

func TestUpdatePassword_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdatePassword(context.Background(), 4242, "hash")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("UpdatePassword() error = %v, want ErrNotFound", err)
	}
}
