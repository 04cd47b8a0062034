package domain

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenPayload is the identity a signed token asserts.
type TokenPayload struct {
	PrincipalID string
	Email       string
	Role        Role
	TokenType   TokenType
}

// AuthState is the outcome class of authenticating one request.
type AuthState string

const (
	StateNoToken                     AuthState = "no_token"
	StateAccessValid                 AuthState = "access_valid"
	StateAccessExpiredRefreshValid   AuthState = "access_expired_refresh_valid"
	StateAccessExpiredRefreshInvalid AuthState = "access_expired_refresh_invalid"
	StateInvalid                     AuthState = "invalid"
)
