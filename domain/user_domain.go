package domain

import "errors"

var (
	MessageSuccessLogin  = "login successful"
	MessageSuccessGetMe  = "user retrieved successfully"
	MessageFailedLogin   = "failed to login"
	MessageFailedGetUser = "failed to retrieve user"

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	LoginResponse struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
		Role      string `json:"role"`
	}

	UserResponse struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
)
