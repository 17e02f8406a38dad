package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ms-passes/internal/apperrors"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusForError(err))
	json.NewEncoder(w).Encode(APIResponse{
		Success:   false,
		Message:   "request failed",
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

// StatusForError maps the service error taxonomy to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrCollectionNotFound),
		errors.Is(err, apperrors.ErrTokenNotFound),
		errors.Is(err, apperrors.ErrPendingCreationNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrSymbolAlreadyTaken),
		errors.Is(err, apperrors.ErrTokenExists):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrPaymentMissing),
		errors.Is(err, apperrors.ErrPaymentInsufficient):
		return http.StatusPaymentRequired
	case errors.Is(err, apperrors.ErrInvalidSymbolFormat),
		errors.Is(err, apperrors.ErrInvalidRoyaltySum),
		errors.Is(err, apperrors.ErrInvalidIdentity):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrPassNotExpired),
		errors.Is(err, apperrors.ErrSoulbound),
		errors.Is(err, apperrors.ErrMaxSupplyReached):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
