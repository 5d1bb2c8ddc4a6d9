package auth

// LoginInput represents the request body for user authentication.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenDTO is returned by a successful login.
type TokenDTO struct {
	Token string `json:"token"`
}
