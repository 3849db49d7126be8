package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// UserHandler handles HTTP requests for user endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler with the provided service dependency.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Users handles GET requests to list every user.
//
// Endpoint: GET /api/user
// Response: 200 OK with array of User
// Error: 500 Internal Server Error if retrieval fails
func (h *UserHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetUsers(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveUsers.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, users)
}

// GetUser handles GET requests to retrieve a single user.
//
// Endpoint: GET /api/user/{uuid}
// Response: 200 OK with User
// Error: 404 Not Found if the user does not exist
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveUsers.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// CreateUser handles POST requests to create a user.
//
// Endpoint: POST /api/user
// Request Body: CreateUserRequest (name)
// Response: 201 Created with User
// Error: 400 Bad Request if the body is invalid or the name fails validation
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateUserRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to create user")
		return
	}

	response.RespondJSON(w, http.StatusCreated, user)
}
