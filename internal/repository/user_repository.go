package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// UserRepository provides data access methods for the user table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Insert stores a new user.
func (r *UserRepository) Insert(ctx context.Context, u model.User) error {
	query := `INSERT INTO user (id, name, created_at) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Get retrieves a single user by ID.
// Returns ErrUserNotFound if no user with the given ID exists.
func (r *UserRepository) Get(ctx context.Context, id string) (model.User, error) {
	query := `SELECT id, name, created_at FROM user WHERE id = ?`

	var u model.User
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}

	u.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// List retrieves all users ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT id, name, created_at FROM user ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user table: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		var createdAtStr string
		if err := rows.Scan(&u.ID, &u.Name, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan user table results: %w", err)
		}
		if u.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user table: %w", err)
	}

	return users, nil
}
