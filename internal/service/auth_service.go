package service

import (
	"context"

	"aquapulse/internal/domain"
	"aquapulse/internal/dto"
)

type AuthService interface {
	ValidateCredentials(ctx context.Context, email, password string) (*domain.Principal, error)
	Login(ctx context.Context, p *domain.Principal) (*dto.LoginResponse, error)
	RegisterUser(ctx context.Context, r dto.RegisterUserRequest) (*dto.StatusResponse, error)
	RegisterSupplier(ctx context.Context, r dto.RegisterSupplierRequest) (*dto.StatusResponse, error)
	CreateAdmin(ctx context.Context, r dto.RegisterUserRequest) (*domain.Principal, error)
	VerifyEmail(ctx context.Context, email, token string) (*dto.StatusResponse, error)
	ChangePassword(ctx context.Context, principalID, oldPassword, newPassword string) (*dto.MessageResponse, error)
	ForgotPassword(ctx context.Context, email string) (*dto.StatusResponse, error)
	VerifyResetCode(ctx context.Context, email, code string) *dto.StatusResponse
	ResetPassword(ctx context.Context, email, code, newPassword string) (*dto.StatusResponse, error)
	GetProfile(ctx context.Context, principalID string) (*domain.Principal, error)
	Logout(ctx context.Context, creds dto.RequestCredentials) error
}

// RequestAuthenticator turns the tokens of one request into an authenticated principal,
// minting a fresh access token when only the refresh token is still good.
type RequestAuthenticator interface {
	Authenticate(ctx context.Context, creds dto.RequestCredentials) (*dto.AuthResult, error)
}
