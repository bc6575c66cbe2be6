package sqlite

import "strings"

// The modernc driver reports constraint failures with SQLite's own message
// text, so classification matches on it.

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// nullIfEmpty stores empty identifiers as NULL so UNIQUE columns accept any
// number of users without one.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
