package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// maxBodyBytes caps request bodies, uploads included.
const maxBodyBytes = 4 << 20

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON")
		}
	}
}

// parseJSON decodes the request body into a T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, errors.New("request body is empty")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	return v, nil
}

// respondServiceError maps a service error onto the API's status codes.
// fallback is the message used for unexpected failures.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var (
		verr    *validation.Error
		unknown *apperrors.UnknownSymbolError
		short   *apperrors.InsufficientSharesError
	)

	switch {
	case errors.As(err, &verr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Messages())
	case errors.As(err, &unknown):
		response.RespondError(w, http.StatusUnprocessableEntity, "unknown symbol", unknown.Error())
	case errors.Is(err, apperrors.ErrUnknownSymbol):
		response.RespondError(w, http.StatusUnprocessableEntity, "unknown symbol", err.Error())
	case errors.As(err, &short):
		response.RespondError(w, http.StatusConflict, "cannot apply this change", short.Error())
	case errors.Is(err, apperrors.ErrUserNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrUserNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInvalidAllocation):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidAllocation.Error(), err.Error())
	default:
		log.Error().Err(err).Msg(fallback)
		response.RespondError(w, http.StatusInternalServerError, fallback, err.Error())
	}
}
