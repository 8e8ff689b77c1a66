package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/corsair/backend/internal/domain/identity"
	"github.com/corsair/backend/internal/infrastructure/auth"
)

// RegisterRequest represents a request to create an owner account
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	DisplayName string `json:"display_name" binding:"max=200"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest represents an owner login attempt
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token rotation request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest represents a logout request. Everywhere revokes every
// token the owner holds, not just the presented one.
type LogoutRequest struct {
	Everywhere bool `json:"everywhere"`
}

// OwnerResponse represents an owner account in API responses
type OwnerResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenResponse carries an issued access and refresh token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse carries the token pair and the authenticated owner
type LoginResponse struct {
	Token TokenResponse `json:"token"`
	Owner OwnerResponse `json:"owner"`
}

// ToOwnerResponse converts an owner to its response representation
func ToOwnerResponse(o *identity.Owner) OwnerResponse {
	return OwnerResponse{
		ID:          o.ID,
		Username:    o.Username,
		DisplayName: o.DisplayName,
		CreatedAt:   o.CreatedAt,
	}
}

// ToTokenResponse converts an issued token pair to its response representation
func ToTokenResponse(p *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           p.AccessToken,
		RefreshToken:          p.RefreshToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             p.TokenType,
	}
}
