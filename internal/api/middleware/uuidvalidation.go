// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// ValidateUUIDMiddleware validates that the uuid URL parameter (the user ID) is present and is a valid UUID.
// Returns 400 Bad Request if it is missing or invalid.
//
// Example usage in router:
//
//	r.Route("/{uuid}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUUIDMiddleware)
//	    r.Get("/", handler.GetUser)
//	})
func ValidateUUIDMiddleware(next http.Handler) http.Handler {
	return ValidateUUIDParam("uuid")(next)
}

// ValidateTransactionIDMiddleware validates the transactionId URL parameter.
func ValidateTransactionIDMiddleware(next http.Handler) http.Handler {
	return ValidateUUIDParam("transactionId")(next)
}

// ValidateUUIDParam returns a middleware that rejects requests whose URL
// parameter named param is empty or not a UUID.
func ValidateUUIDParam(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, param)

			if id == "" {
				response.RespondError(w, http.StatusBadRequest, "valid UUID is required", param)
				return
			}

			if err := validation.ValidateUUID(id); err != nil {
				response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
