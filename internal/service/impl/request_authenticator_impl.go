package impl

import (
	"context"

	"aquapulse/internal/domain"
	"aquapulse/internal/dto"
	"aquapulse/internal/observability/metrics"
	"aquapulse/internal/observability/middleware"
	"aquapulse/internal/service"
)

// RequestAuthenticatorImpl runs the per-request token state machine:
// a valid access token wins; otherwise a valid refresh token mints a new access token.
type RequestAuthenticatorImpl struct {
	Tokens   service.TokenService
	Resolver service.PrincipalResolver
}

func NewRequestAuthenticatorImpl(tokens service.TokenService, resolver service.PrincipalResolver) *RequestAuthenticatorImpl {
	return &RequestAuthenticatorImpl{Tokens: tokens, Resolver: resolver}
}

func (a *RequestAuthenticatorImpl) Authenticate(ctx context.Context, creds dto.RequestCredentials) (*dto.AuthResult, error) {
	state, payload, newToken, err := a.classify(ctx, creds)
	metrics.RequestAuthTotal.WithLabelValues(string(state)).Inc()
	if err != nil {
		return nil, err
	}

	principal, err := a.Resolver.FindByID(ctx, payload.PrincipalID)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, ErrPrincipalGone
	}

	return &dto.AuthResult{
		Principal:      principal,
		PrincipalID:    payload.PrincipalID,
		Email:          payload.Email,
		Role:           payload.Role,
		State:          state,
		NewAccessToken: newToken,
		NewTokenIssued: newToken != "",
	}, nil
}

func (a *RequestAuthenticatorImpl) classify(ctx context.Context, creds dto.RequestCredentials) (domain.AuthState, *domain.TokenPayload, string, error) {
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return domain.StateNoToken, nil, "", ErrNoToken
	}

	log := middleware.Logger(ctx)
	if creds.AccessToken != "" {
		payload, err := a.Tokens.VerifyAccess(ctx, creds.AccessToken)
		if err == nil {
			return domain.StateAccessValid, payload, "", nil
		}
		log.Debug("access token rejected", "err", err)
	}

	if creds.RefreshToken == "" {
		return domain.StateInvalid, nil, "", ErrAccessTokenInvalid
	}
	payload, err := a.Tokens.VerifyRefresh(ctx, creds.RefreshToken)
	if err != nil {
		log.Debug("refresh token rejected", "err", err)
		return domain.StateAccessExpiredRefreshInvalid, nil, "", ErrRefreshTokenInvalid
	}
	token, err := a.Tokens.MintAccess(ctx, *payload)
	if err != nil {
		return domain.StateAccessExpiredRefreshInvalid, nil, "", err
	}
	payload.TokenType = domain.TokenAccess
	log.Info("silently refreshed access token", "principal_id", payload.PrincipalID)
	return domain.StateAccessExpiredRefreshValid, payload, token, nil
}
