package dto

import "aquapulse/internal/domain"

// RequestCredentials are the raw tokens a request presented.
type RequestCredentials struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is what the request authenticator attaches to an authenticated request.
type AuthResult struct {
	Principal      *domain.Principal
	PrincipalID    string
	Email          string
	Role           domain.Role
	State          domain.AuthState
	NewAccessToken string
	NewTokenIssued bool
}
