package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// TestRespondJSON tests the respondJSON helper function.
// This is an internal test (package handlers, not handlers_test) because
// respondJSON is unexported.
func TestRespondJSON(t *testing.T) {
	t.Run("sets content-type and status code correctly", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "success"}

		respondJSON(w, 200, data)

		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", w.Header().Get("Content-Type"))
		}
	})

	t.Run("handles nil data without error", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondJSON(w, 204, nil)

		if w.Code != 204 {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
	})

	t.Run("handles un-encodable data without panicking", func(t *testing.T) {
		w := httptest.NewRecorder()

		// Channels cannot be JSON encoded
		data := map[string]interface{}{
			"channel": make(chan int),
		}

		respondJSON(w, 200, data)

		// Status should still be set even if encoding fails
		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		// Content-Type should still be set
		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type to be set")
		}
	})

	t.Run("encodes valid data successfully", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondJSON(w, 200, map[string]string{"name": "test"})

		var got map[string]string
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got["name"] != "test" {
			t.Errorf("Expected name 'test', got %q", got["name"])
		}
	})
}

func TestParseJSON(t *testing.T) {
	t.Run("decodes a valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"date":"2024-01-02","symbol":"AAPL","type":"BUY","quantity":1,"price":2}`))

		req, err := parseJSON[request.CreateTransactionRequest](r)
		if err != nil {
			t.Fatalf("parseJSON() error = %v", err)
		}
		if req.Symbol != "AAPL" || req.Quantity == nil || *req.Quantity != 1 {
			t.Errorf("unexpected request %+v", req)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"date":`},
		{name: "unknown field", body: `{"name":"x","admin":true}`},
		{name: "wrong type", body: `{"name":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if _, err := parseJSON[request.CreateUserRequest](r); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation",
			err:        &validation.Error{Fields: map[string]string{"symbol": "symbol is required."}},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation failed",
		},
		{
			name:       "unknown symbol",
			err:        fmt.Errorf("resolve: %w", &apperrors.UnknownSymbolError{Symbol: "NOPE"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "unknown symbol",
		},
		{
			name:       "joined unknown symbols",
			err:        errors.Join(&apperrors.UnknownSymbolError{Symbol: "A"}, &apperrors.UnknownSymbolError{Symbol: "B"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "unknown symbol",
		},
		{
			name:       "insufficient shares",
			err:        &apperrors.InsufficientSharesError{Symbol: "AAPL", Date: time.Now(), Shortfall: 2},
			wantStatus: http.StatusConflict,
			wantError:  "cannot apply this change",
		},
		{
			name:       "user not found",
			err:        apperrors.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "user not found",
		},
		{
			name:       "transaction not found",
			err:        apperrors.ErrTransactionNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "transaction not found",
		},
		{
			name:       "invalid allocation",
			err:        apperrors.ErrInvalidAllocation,
			wantStatus: http.StatusBadRequest,
			wantError:  apperrors.ErrInvalidAllocation.Error(),
		},
		{
			name:       "anything else",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "fallback message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			respondServiceError(w, tt.err, "fallback message")

			if w.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, w.Code)
			}
			var body map[string]any
			//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
			json.NewDecoder(w.Body).Decode(&body)
			if body["error"] != tt.wantError {
				t.Errorf("Expected error %q, got %v", tt.wantError, body["error"])
			}
		})
	}

	t.Run("validation details are the message list", func(t *testing.T) {
		w := httptest.NewRecorder()
		respondServiceError(w, &validation.Error{Fields: map[string]string{
			"price":    "share price is required.",
			"quantity": "quantity is required.",
		}}, "x")

		var body struct {
			Details []string `json:"details"`
		}
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)
		if len(body.Details) != 2 || body.Details[0] != "share price is required." {
			t.Errorf("details = %v", body.Details)
		}
	})
}
