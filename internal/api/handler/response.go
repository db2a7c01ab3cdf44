package handler

import (
	"credit-approval/internal/api/handler/dto"
	"credit-approval/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decodeJSON treats an empty body as an empty object so that missing fields
// are reported by the DTO. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := decoder.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: request body exceeds %d bytes", apperrors.ErrInvalidArgument, maxErr.Limit)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: malformed JSON body: %v", apperrors.ErrInvalidArgument, err)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &apperrors.ValidationError{Field: typeErr.Field, Message: "Invalid data types", Cause: apperrors.ErrValidation}
	}
	return &apperrors.ValidationError{Message: "Invalid data types", Cause: fmt.Errorf("%w: %v", apperrors.ErrValidation, err)}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := dto.ErrorResponse{Error: "Internal server error"}
	var validationError *apperrors.ValidationError

	switch {
	case errors.As(err, &validationError):
		status = http.StatusBadRequest
		resp = dto.ErrorResponse{Error: validationError.Message, Details: validationError.Field}
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidArgument):
		status = http.StatusBadRequest
		resp = dto.ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		resp = dto.ErrorResponse{Error: "Resource not found", Details: err.Error()}
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrAlreadyExists):
		status = http.StatusConflict
		resp = dto.ErrorResponse{Error: "Resource already exists", Details: err.Error()}
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	respondJSON(w, status, resp)
}

func getIDFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, param)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s format in URL path: %s", apperrors.ErrInvalidArgument, param, idStr)
	}
	return id, nil
}
