package auth

import (
	"time"

	"github.com/dramirezh/tienda-backend/pkg/db/models"
	"github.com/dramirezh/tienda-backend/pkg/enums"
)

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"nombre" validate:"required"`
}

// LoginRequest is the payload for credential authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the public view of an account.
type UserSummary struct {
	ID    uint           `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"nombre"`
	Role  enums.UserRole `json:"rol"`
}

// AuthResponse carries a minted token plus the authenticated account.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiraEn"`
	User      UserSummary `json:"usuario"`
}

func newUserSummary(user *models.User) UserSummary {
	return UserSummary{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}
