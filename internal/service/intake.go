package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sakif/water-tracker/internal/apperror"
	"github.com/sakif/water-tracker/internal/model"
	"github.com/sakif/water-tracker/internal/repository"
)

// A day with no saved record reads as DefaultGlassCount full glasses of
// DefaultGlassAmount each and zero liters.
const (
	DefaultGlassCount  = 8
	DefaultGlassAmount = "250ml"
)

// IntakeService reads and writes a user's daily water-intake record.
type IntakeService struct {
	repo   repository.IntakeRepository
	logger *slog.Logger
}

func NewIntakeService(repo repository.IntakeRepository, logger *slog.Logger) *IntakeService {
	return &IntakeService{
		repo:   repo,
		logger: logger,
	}
}

// parseLayout also admits unpadded months and days ("2024-3-1").
const parseLayout = "2006-1-2"

// ParseDate accepts "YYYY-MM-DD", optionally followed by a "T" and any time
// part, which is discarded: "2024-03-01T23:59:00.000Z" is 2024-03-01.
func ParseDate(s string) (time.Time, error) {
	datePart, _, _ := strings.Cut(s, "T")
	if datePart == "" {
		return time.Time{}, apperror.ValidationFailed("date", "date is required")
	}

	d, err := time.Parse(parseLayout, datePart)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed("date",
			fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", s))
	}
	return d, nil
}

// DefaultIntake returns a fresh copy of the payload served for days without a record.
func DefaultIntake() *model.DailyIntake {
	glasses := make([]model.Glass, DefaultGlassCount)
	for i := range glasses {
		glasses[i] = model.Glass{IsEmpty: false, Amount: DefaultGlassAmount}
	}
	// A slice of plain structs always marshals.
	raw, _ := json.Marshal(glasses)
	return &model.DailyIntake{Glasses: raw, Liters: 0}
}

// normalizeGlasses compacts a client's glass list and checks that it is a JSON
// array. Element contents are left alone. Missing or null input means no glasses.
func normalizeGlasses(glasses model.Glasses) (model.Glasses, error) {
	trimmed := bytes.TrimSpace(glasses)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return model.EmptyGlasses, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil || buf.Bytes()[0] != '[' {
		return nil, apperror.ValidationFailed("glasses", "glasses must be a JSON array")
	}
	return buf.Bytes(), nil
}

// GetIntake returns the stored record for the user's day, or the default
// payload when none exists. The default is never written back.
func (s *IntakeService) GetIntake(ctx context.Context, userID int64, date string) (*model.DailyIntake, error) {
	if userID <= 0 {
		return nil, apperror.ValidationFailed("user_id", "user_id must be a positive integer")
	}
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.GetIntake(ctx, userID, d)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return DefaultIntake(), nil
		}
		s.logger.Error("failed to read water intake",
			slog.Int64("userID", userID),
			slog.String("date", d.Format(model.DateLayout)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/intake: reading intake: %w", err)
	}

	return &model.DailyIntake{Glasses: stored.Glasses, Liters: stored.Liters}, nil
}

// UpdateIntake replaces the user's record for the day with glasses and liters,
// creating it on first write.
func (s *IntakeService) UpdateIntake(ctx context.Context, userID int64, date string, glasses model.Glasses, liters float64) error {
	if userID <= 0 {
		return apperror.ValidationFailed("user_id", "user_id must be a positive integer")
	}
	d, err := ParseDate(date)
	if err != nil {
		return err
	}
	if liters < 0 || math.IsNaN(liters) || math.IsInf(liters, 0) {
		return apperror.ValidationFailed("liters", "liters must be a non-negative number")
	}
	glasses, err = normalizeGlasses(glasses)
	if err != nil {
		return err
	}

	intake := &model.WaterIntake{
		UserID:  userID,
		Date:    d,
		Glasses: glasses,
		Liters:  liters,
	}
	if err := s.repo.UpsertIntake(ctx, intake); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to save water intake",
				slog.Int64("userID", userID),
				slog.String("date", d.Format(model.DateLayout)),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("service/intake: saving intake: %w", err)
	}

	s.logger.Info("water intake updated",
		slog.Int64("userID", userID),
		slog.String("date", d.Format(model.DateLayout)),
		slog.Int("glassesBytes", len(glasses)),
		slog.Float64("liters", liters),
	)
	return nil
}
