package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-tracker/internal/testutil"
)

func setupServices(t *testing.T) (*testutil.Services, *testutil.MockMarketDataProvider, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	provider := testutil.NewMockMarketDataProvider().WithSymbol("AAPL", 120)
	return testutil.NewTestServices(t, db, provider), provider, db
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}
