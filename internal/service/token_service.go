package service

import (
	"context"
	"time"

	"aquapulse/internal/domain"
	"aquapulse/internal/dto"
)

type TokenService interface {
	IssuePair(ctx context.Context, p *domain.Principal) (*dto.TokenPair, error)
	MintAccess(ctx context.Context, payload domain.TokenPayload) (string, error)
	VerifyAccess(ctx context.Context, token string) (*domain.TokenPayload, error)
	VerifyRefresh(ctx context.Context, token string) (*domain.TokenPayload, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
	Revoke(ctx context.Context, token string) error
}

// TokenDenylist remembers revoked tokens until their natural expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
