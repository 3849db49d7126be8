package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/testutil"
)

func setupPortfolio(t *testing.T) (*PortfolioHandler, model.User) {
	t.Helper()
	svc, provider, db := setupServices(t)
	provider.WithHistory("AAPL", testutil.DailyCloses(testutil.Day(2024, 1, 2), 100, 105, 110))
	user := testutil.NewUser().Build(t, db)

	_, err := svc.Transactions.CreateTransaction(context.Background(), user.ID, request.CreateTransactionRequest{
		Date: "2024-01-02", Symbol: "AAPL", Type: "BUY",
		Quantity: testutil.Ptr(10.0), Price: testutil.Ptr(100.0),
	})
	if err != nil {
		t.Fatalf("Failed to seed transaction: %v", err)
	}
	return NewPortfolioHandler(svc.Portfolio), user
}

func userRequest(user model.User, path string, query map[string]string) *http.Request {
	return testutil.WithURLParams(
		testutil.NewRequestWithQueryParams(http.MethodGet, path, query),
		map[string]string{"uuid": user.ID},
	)
}

func TestPortfolioHandler_PositionsAndSummary(t *testing.T) {
	handler, user := setupPortfolio(t)

	t.Run("positions", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Positions(w, userRequest(user, "/positions", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		rows := decodeBody[[]model.PositionRow](t, w)
		if len(rows) != 1 || rows[0].MarketValue != 1200 {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("summary", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Summary(w, userRequest(user, "/summary", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if s := decodeBody[model.PortfolioSummary](t, w); s.UnrealizedGain != 200 {
			t.Errorf("Expected unrealized gain 200, got %v", s.UnrealizedGain)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Summary(w, userRequest(model.User{ID: testutil.MakeID()}, "/summary", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestPortfolioHandler_History(t *testing.T) {
	handler, user := setupPortfolio(t)

	tests := []struct {
		name       string
		query      map[string]string
		wantStatus int
		wantPoints int
	}{
		{name: "all history", wantStatus: http.StatusOK, wantPoints: 3},
		{name: "with live point", query: map[string]string{"live": "true"}, wantStatus: http.StatusOK, wantPoints: 4},
		{name: "window excludes old data", query: map[string]string{"days": "7"}, wantStatus: http.StatusOK, wantPoints: 0},
		{name: "bad days", query: map[string]string{"days": "week"}, wantStatus: http.StatusBadRequest},
		{name: "negative days", query: map[string]string{"days": "-1"}, wantStatus: http.StatusBadRequest},
		{name: "bad live", query: map[string]string{"live": "often"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.History(w, userRequest(user, "/history", tt.query))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			points := decodeBody[[]model.ValueHistoryPoint](t, w)
			if points == nil {
				t.Error("Expected a JSON array, got null")
			}
			if len(points) != tt.wantPoints {
				t.Errorf("Expected %d points, got %d", tt.wantPoints, len(points))
			}
		})
	}
}

func TestPortfolioHandler_MetricsAndAllocation(t *testing.T) {
	handler, user := setupPortfolio(t)

	t.Run("metrics has a row per window", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Metrics(w, userRequest(user, "/metrics", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		rows := decodeBody[[]model.MetricsRow](t, w)
		if len(rows) != 6 || rows[0].Label != "1M" || rows[5].Label != "All" {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	tests := []struct {
		name       string
		by         string
		wantStatus int
		wantKey    string
	}{
		{name: "default is sector", wantStatus: http.StatusOK},
		{name: "asset classes", by: "asset", wantStatus: http.StatusOK, wantKey: "stockPosition"},
		{name: "unknown kind", by: "region", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run("allocation "+tt.name, func(t *testing.T) {
			query := map[string]string{}
			if tt.by != "" {
				query["by"] = tt.by
			}
			w := httptest.NewRecorder()
			handler.Allocation(w, userRequest(user, "/allocation", query))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			buckets := decodeBody[[]model.AllocationBucket](t, w)
			if tt.wantKey == "" {
				// The mock equity carries no sector weights.
				if len(buckets) != 0 {
					t.Errorf("Expected no sector buckets, got %+v", buckets)
				}
				return
			}
			if len(buckets) != 1 || buckets[0].Key != tt.wantKey || buckets[0].Weight != 1 {
				t.Errorf("unexpected buckets %+v", buckets)
			}
		})
	}
}
