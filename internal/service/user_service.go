package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// UserService manages the accounts transactions are recorded against.
type UserService struct {
	userRepo *repository.UserRepository
	log      zerolog.Logger
}

// NewUserService creates a new UserService with the provided repository dependency.
func NewUserService(userRepo *repository.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      log.With().Str("component", "users").Logger(),
	}
}

// CreateUser validates the request and stores a new user.
func (s *UserService) CreateUser(ctx context.Context, req request.CreateUserRequest) (model.User, error) {
	if err := validation.ValidateCreateUser(req); err != nil {
		return model.User{}, err
	}

	user := model.User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.userRepo.Insert(ctx, user); err != nil {
		return model.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user created")
	return user, nil
}

// GetUser returns a single user. Returns ErrUserNotFound if it does not exist.
func (s *UserService) GetUser(ctx context.Context, userID string) (model.User, error) {
	return s.userRepo.Get(ctx, userID)
}

// GetUsers returns every user in creation order.
func (s *UserService) GetUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}
