// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account. Either Email or Phone may be empty, never both.
//
// PasswordHash holds a bcrypt string and is never serialized to clients.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	Phone        string    `json:"phone"     db:"phone"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
