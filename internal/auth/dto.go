package auth

import (
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// RegisterRequest contains the payload required to create a shopper account.
type RegisterRequest struct {
	Name     string        `json:"name" validate:"required,max=100"`
	Email    string        `json:"email" validate:"required,email"`
	Password string        `json:"password" validate:"required,min=6"`
	Phone    string        `json:"phone" validate:"required,len=10,number"`
	Address  types.JSONMap `json:"address" validate:"required"`
}

// LoginRequest carries the credentials for both shopper and admin logins.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed token together with the public profile.
type LoginResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}

// UpdateProfileRequest carries the mutable profile fields. Email and role are
// fixed at registration time.
type UpdateProfileRequest struct {
	Name     *string        `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Password *string        `json:"password,omitempty" validate:"omitempty,min=6"`
	Phone    *string        `json:"phone,omitempty" validate:"omitempty,len=10,number"`
	Address  *types.JSONMap `json:"address,omitempty"`
}
