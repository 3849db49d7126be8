package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/testutil"
)

func TestUserHandler(t *testing.T) {
	t.Run("creates a user", func(t *testing.T) {
		svc, _, _ := setupServices(t)
		handler := NewUserHandler(svc.Users)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/user", map[string]string{"name": "Alice"}, nil)
		w := httptest.NewRecorder()
		handler.CreateUser(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		user := decodeBody[model.User](t, w)
		if user.ID == "" || user.Name != "Alice" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("returns 400 for a blank name", func(t *testing.T) {
		svc, _, _ := setupServices(t)
		handler := NewUserHandler(svc.Users)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/user", map[string]string{"name": " "}, nil)
		w := httptest.NewRecorder()
		handler.CreateUser(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for malformed JSON", func(t *testing.T) {
		svc, _, _ := setupServices(t)
		handler := NewUserHandler(svc.Users)

		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/user", `{"name":`, nil)
		w := httptest.NewRecorder()
		handler.CreateUser(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("lists users", func(t *testing.T) {
		svc, _, db := setupServices(t)
		handler := NewUserHandler(svc.Users)
		testutil.NewUser().Build(t, db)
		testutil.NewUser().Build(t, db)

		w := httptest.NewRecorder()
		handler.Users(w, httptest.NewRequest(http.MethodGet, "/api/user", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if users := decodeBody[[]model.User](t, w); len(users) != 2 {
			t.Errorf("Expected 2 users, got %d", len(users))
		}
	})

	t.Run("gets one user or 404", func(t *testing.T) {
		svc, _, db := setupServices(t)
		handler := NewUserHandler(svc.Users)
		user := testutil.NewUser().Build(t, db)

		w := httptest.NewRecorder()
		handler.GetUser(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/user/"+user.ID, map[string]string{"uuid": user.ID}))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}

		missing := testutil.MakeID()
		w = httptest.NewRecorder()
		handler.GetUser(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/user/"+missing, map[string]string{"uuid": missing}))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("returns 500 on database error", func(t *testing.T) {
		svc, _, db := setupServices(t)
		handler := NewUserHandler(svc.Users)
		db.Close()

		w := httptest.NewRecorder()
		handler.Users(w, httptest.NewRequest(http.MethodGet, "/api/user", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}
	})
}
