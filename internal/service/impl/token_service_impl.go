package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"aquapulse/internal/domain"
	"aquapulse/internal/dto"
	"aquapulse/internal/jwtsigner"
	"aquapulse/internal/observability/metrics"
	"aquapulse/internal/observability/middleware"
	"aquapulse/internal/service"
)

type TokenConfig struct {
	Issuer        string
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration // e.g. 15 * time.Minute
	RefreshTTL    time.Duration // e.g. 7 * 24h
}

// TokenServiceImpl signs and checks access and refresh tokens under distinct secrets.
// Tokens are stateless; the optional denylist only records logouts.
type TokenServiceImpl struct {
	cfg      TokenConfig
	access   *jwtsigner.Signer
	refresh  *jwtsigner.Signer
	denylist service.TokenDenylist
	now      func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig, denylist service.TokenDenylist) (*TokenServiceImpl, error) {
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token ttls must be positive")
	}
	access, err := jwtsigner.NewHS256(cfg.AccessSecret, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("access signer: %w", err)
	}
	refresh, err := jwtsigner.NewHS256(cfg.RefreshSecret, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("refresh signer: %w", err)
	}
	return &TokenServiceImpl{cfg: cfg, access: access, refresh: refresh, denylist: denylist, now: time.Now}, nil
}

// WithClock returns a copy whose signers and expiry checks read now.
func (t *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	cp := *t
	cp.now = now
	cp.access = t.access.WithClock(now)
	cp.refresh = t.refresh.WithClock(now)
	return &cp
}

func (t *TokenServiceImpl) AccessTTL() time.Duration { return t.cfg.AccessTTL }

// IssuePair signs both tokens for p concurrently.
func (t *TokenServiceImpl) IssuePair(ctx context.Context, p *domain.Principal) (*dto.TokenPair, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("issue", result).Inc()
	}()

	var pair dto.TokenPair
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		tok, exp, err := t.access.Sign(p.Payload(domain.TokenAccess), t.cfg.AccessTTL)
		pair.AccessToken, pair.AccessExpiresAt = tok, exp
		return err
	})
	g.Go(func() error {
		tok, exp, err := t.refresh.Sign(p.Payload(domain.TokenRefresh), t.cfg.RefreshTTL)
		pair.RefreshToken, pair.RefreshExpiresAt = tok, exp
		return err
	})
	if err := g.Wait(); err != nil {
		result = "failure"
		return nil, err
	}

	middleware.Logger(ctx).Info("issued tokens", "principal_id", p.ID(), "role", p.Role())
	return &pair, nil
}

// MintAccess signs a fresh access token for an already verified payload.
func (t *TokenServiceImpl) MintAccess(ctx context.Context, payload domain.TokenPayload) (string, error) {
	payload.TokenType = domain.TokenAccess
	tok, _, err := t.access.Sign(payload, t.cfg.AccessTTL)
	metrics.TokensIssuedTotal.WithLabelValues("silent_refresh", metrics.Result(err)).Inc()
	return tok, err
}

func (t *TokenServiceImpl) VerifyAccess(ctx context.Context, token string) (*domain.TokenPayload, error) {
	return t.verify(ctx, t.access, token, domain.TokenAccess)
}

func (t *TokenServiceImpl) VerifyRefresh(ctx context.Context, token string) (*domain.TokenPayload, error) {
	return t.verify(ctx, t.refresh, token, domain.TokenRefresh)
}

// verify runs the crypto check, then the expiry check, then the token type and denylist checks.
func (t *TokenServiceImpl) verify(ctx context.Context, s *jwtsigner.Signer, token string, want domain.TokenType) (*domain.TokenPayload, error) {
	claims, err := s.Parse(token)
	if err != nil {
		return nil, err
	}
	if err := claims.CheckExpiry(t.now()); err != nil {
		return nil, err
	}
	payload := claims.Payload()
	if payload.TokenType != want {
		return nil, fmt.Errorf("%w: expected %s token", jwtsigner.ErrTokenInvalid, want)
	}
	if t.denylist != nil {
		revoked, err := t.denylist.IsRevoked(ctx, token)
		if err != nil {
			middleware.Logger(ctx).Warn("denylist lookup failed", "err", err)
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return &payload, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (t *TokenServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", result).Inc()
	}()

	payload, err := t.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		result = "failure"
		return nil, err
	}
	payload.TokenType = domain.TokenAccess
	tok, _, err := t.access.Sign(*payload, t.cfg.AccessTTL)
	if err != nil {
		result = "failure"
		return nil, err
	}

	middleware.Logger(ctx).Info("refreshed access token", "principal_id", payload.PrincipalID)
	return &dto.RefreshResponse{
		AccessToken: tok,
		ExpiresIn:   int64(t.cfg.AccessTTL.Seconds()),
	}, nil
}

// Revoke denylists token until its own expiry. Tokens of either kind are accepted.
func (t *TokenServiceImpl) Revoke(ctx context.Context, token string) error {
	if t.denylist == nil || token == "" {
		return nil
	}
	claims, err := t.access.Parse(token)
	if err != nil {
		claims, err = t.refresh.Parse(token)
	}
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(t.now()) {
		return nil
	}
	return t.denylist.Revoke(ctx, token, claims.ExpiresAt.Time)
}
