package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/water-tracker/internal/model"
	"github.com/sakif/water-tracker/internal/service"
)

const (
	msgFetchFailed  = "Failed to fetch water intake"
	msgUpdateFailed = "Failed to update water intake"
)

// GetIntakeRequest is the body of POST /get_water_intake.
// Date is "YYYY-MM-DD", optionally followed by "T" and a time that is ignored.
type GetIntakeRequest struct {
	UserID int64  `json:"user_id"`
	Date   string `json:"date"`
}

// UpdateIntakeRequest is the body of POST /update_water_intake.
type UpdateIntakeRequest struct {
	UserID  int64         `json:"user_id"`
	Date    string        `json:"date"`
	Glasses model.Glasses `json:"glasses"` // any JSON array, kept verbatim
	Liters  float64       `json:"liters"`
}

// IntakeHandler exposes reading and saving a day's water intake.
type IntakeHandler struct {
	intakes *service.IntakeService
	logger  *slog.Logger
}

func NewIntakeHandler(intakes *service.IntakeService, logger *slog.Logger) *IntakeHandler {
	return &IntakeHandler{
		intakes: intakes,
		logger:  logger,
	}
}

// HandleGet returns the day's glasses and liters, or the default day.
//
// HTTP: POST /get_water_intake → 200 {"glasses": [...], "liters": 0.0}
func (h *IntakeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	var req GetIntakeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid get_water_intake JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid JSON body"})
		return
	}

	intake, err := h.intakes.GetIntake(r.Context(), req.UserID, req.Date)
	if err != nil {
		writeFailure(w, h.logger, msgFetchFailed, err)
		return
	}

	writeJSON(w, http.StatusOK, intake)
}

// HandleUpdate stores the day's glasses and liters, replacing any earlier save.
//
// HTTP: POST /update_water_intake → 200 {"message": "Water intake updated successfully"}
func (h *IntakeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateIntakeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid update_water_intake JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid JSON body"})
		return
	}

	if err := h.intakes.UpdateIntake(r.Context(), req.UserID, req.Date, req.Glasses, req.Liters); err != nil {
		writeFailure(w, h.logger, msgUpdateFailed, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Water intake updated successfully"})
}
