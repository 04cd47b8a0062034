package jwtsigner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"aquapulse/internal/domain"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the JWT body. The field names are shared with the web and mobile clients.
type Claims struct {
	PrincipalID string `json:"userId"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	TokenType   string `json:"tokenType,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Payload() domain.TokenPayload {
	typ := domain.TokenAccess
	if c.TokenType == string(domain.TokenRefresh) {
		typ = domain.TokenRefresh
	}
	return domain.TokenPayload{
		PrincipalID: c.PrincipalID,
		Email:       c.Email,
		Role:        domain.Role(c.Role),
		TokenType:   typ,
	}
}

// CheckExpiry reports ErrTokenExpired once now reaches the exp claim.
func (c *Claims) CheckExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return fmt.Errorf("%w: missing exp", ErrTokenInvalid)
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	return nil
}

// Signer issues and checks HS256 tokens under a single secret.
type Signer struct {
	secret []byte
	Issuer string
	now    func() time.Time
}

func NewHS256(secret, issuer string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwtsigner: empty secret")
	}
	return &Signer{secret: []byte(secret), Issuer: issuer, now: time.Now}, nil
}

// WithClock replaces the time source; used by tests and by callers sharing a clock.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	cp := *s
	cp.now = now
	return &cp
}

// Sign issues a token for p valid for ttl. Only refresh payloads carry tokenType.
func (s *Signer) Sign(p domain.TokenPayload, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)
	claims := Claims{
		PrincipalID: p.PrincipalID,
		Email:       p.Email,
		Role:        string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   p.PrincipalID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	if p.TokenType == domain.TokenRefresh {
		claims.TokenType = string(domain.TokenRefresh)
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse checks signature, algorithm and issuer but not expiry.
func (s *Signer) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrTokenInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if s.Issuer != "" && claims.Issuer != s.Issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	}
	return claims, nil
}

// Verify runs Parse and then the expiry check. Expired tokens still return their claims.
func (s *Signer) Verify(raw string) (*Claims, error) {
	claims, err := s.Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := claims.CheckExpiry(s.now()); err != nil {
		return claims, err
	}
	return claims, nil
}

// Signature returns the signature segment of a compact JWT, or "" when malformed.
func Signature(raw string) string {
	i := strings.LastIndexByte(raw, '.')
	if i < 0 || strings.Count(raw, ".") != 2 {
		return ""
	}
	return raw[i+1:]
}
