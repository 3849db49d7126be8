package request

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name string `json:"name"`
}
