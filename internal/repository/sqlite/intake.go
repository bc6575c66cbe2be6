package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/water-tracker/internal/apperror"
	"github.com/sakif/water-tracker/internal/model"
	"github.com/sakif/water-tracker/internal/repository"
)

var _ repository.IntakeRepository = (*DB)(nil)

// GetIntake returns the stored record for (userID, date).
// Returns apperror.ErrNotFound when nothing has been saved for that day.
//
// Dates are stored as "YYYY-MM-DD" text: the day is the key, the time of
// day is irrelevant, and text compares exactly under the UNIQUE index.
func (db *DB) GetIntake(ctx context.Context, userID int64, date time.Time) (*model.WaterIntake, error) {
	day := date.Format(model.DateLayout)

	var (
		in          model.WaterIntake
		storedDay   string
		glassesJSON string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, date, glasses, liters, created_at, updated_at
		 FROM water_intakes
		 WHERE user_id = ? AND date = ?`,
		userID, day,
	).Scan(&in.ID, &in.UserID, &storedDay, &glassesJSON, &in.Liters, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("water intake", fmt.Sprintf("user %d on %s", userID, day))
		}
		return nil, fmt.Errorf("sqlite: getting intake for user %d on %s: %w", userID, day, err)
	}

	in.Date, err = time.Parse(model.DateLayout, storedDay)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parsing stored date %q: %w", storedDay, err)
	}

	if !isJSONArray([]byte(glassesJSON)) {
		return nil, fmt.Errorf("sqlite: intake %d holds malformed glasses %q", in.ID, glassesJSON)
	}
	in.Glasses = model.Glasses(glassesJSON)

	return &in, nil
}

// UpsertIntake writes the day's record with one INSERT ... ON CONFLICT statement,
// so two concurrent writers for the same (user, date) can never create two rows.
// The later statement overwrites glasses and liters; nothing is merged.
// Glasses are written as sent; empty input is stored as "[]".
//
// On return intake.ID is set to the row's id, whether inserted or updated.
func (db *DB) UpsertIntake(ctx context.Context, intake *model.WaterIntake) error {
	day := intake.Date.Format(model.DateLayout)

	glasses := intake.Glasses
	if len(glasses) == 0 {
		glasses = model.EmptyGlasses
	}
	if !isJSONArray(glasses) {
		return fmt.Errorf("sqlite: glasses for user %d on %s are not a JSON array", intake.UserID, day)
	}

	now := time.Now().UTC()

	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO water_intakes (user_id, date, glasses, liters, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date) DO UPDATE SET
		     glasses    = excluded.glasses,
		     liters     = excluded.liters,
		     updated_at = excluded.updated_at
		 RETURNING id`,
		intake.UserID,
		day,
		string(glasses),
		intake.Liters,
		now,
		now,
	).Scan(&intake.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", fmt.Sprint(intake.UserID))
		}
		return fmt.Errorf("sqlite: upserting intake for user %d on %s: %w", intake.UserID, day, err)
	}

	intake.Glasses = glasses
	intake.UpdatedAt = now
	return nil
}

// isJSONArray reports whether b is a well-formed JSON array.
func isJSONArray(b []byte) bool {
	var elems []json.RawMessage
	return json.Unmarshal(b, &elems) == nil && elems != nil
}
