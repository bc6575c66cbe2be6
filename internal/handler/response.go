package handler

// Every JSON body this API sends carries a "message". Failures of the intake
// endpoints add an "error" detail:
//
//	{"message": "Failed to update water intake", "error": "invalid date \"x\": expected YYYY-MM-DD"}
//
// Only messages of typed application errors reach clients. Storage failures are
// logged in full and reported as "internal error".

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/water-tracker/internal/apperror"
)

// maxBodyBytes caps request bodies; the largest legitimate one is a day's glasses list.
const maxBodyBytes = 1 << 20

const msgInternal = "internal error"

// MessageResponse is the body of most success and failure responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// FailureResponse is returned by the intake endpoints when an operation fails.
type FailureResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeError maps a domain error from the account endpoints to a status code.
//
// The wire contract only distinguishes 400, 404 and 500: conflicts and failed
// logins are both reported as 400 Bad Request.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrConflict),
			errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}

		writeJSON(w, status, MessageResponse{Message: appErr.Message})
		return
	}

	logger.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: msgInternal})
}

// writeFailure reports a failed intake operation as 500 with a detail string.
func writeFailure(w http.ResponseWriter, logger *slog.Logger, message string, err error) {
	detail := msgInternal
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		detail = appErr.Message
	} else {
		logger.Error(message, slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusInternalServerError, FailureResponse{
		Message: message,
		Error:   detail,
	})
}
