package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"aquapulse/internal/domain"
	"aquapulse/internal/dto"
	"aquapulse/internal/httpx"
	"aquapulse/internal/service"
)

const RefreshHeader = "X-Refresh-Token"

type authResultKey struct{}

func withAuthResult(ctx context.Context, res *dto.AuthResult) context.Context {
	return context.WithValue(ctx, authResultKey{}, res)
}

// AuthResultFrom returns what the authn middleware attached to ctx.
func AuthResultFrom(ctx context.Context) (*dto.AuthResult, bool) {
	res, ok := ctx.Value(authResultKey{}).(*dto.AuthResult)
	return res, ok && res != nil
}

// credentialsFrom prefers the Authorization header over the access cookie,
// and the refresh header over the refresh cookie.
func credentialsFrom(r *http.Request) dto.RequestCredentials {
	var creds dto.RequestCredentials
	if raw := r.Header.Get("Authorization"); len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		creds.AccessToken = strings.TrimSpace(raw[7:])
	}
	if creds.AccessToken == "" {
		if c, err := r.Cookie(AccessCookie); err == nil {
			creds.AccessToken = c.Value
		}
	}
	creds.RefreshToken = strings.TrimSpace(r.Header.Get(RefreshHeader))
	if creds.RefreshToken == "" {
		if c, err := r.Cookie(RefreshCookie); err == nil {
			creds.RefreshToken = c.Value
		}
	}
	return creds
}

// Authenticate gates a route on a valid token pair. A silently refreshed access token is
// written back as a cookie before the handler runs.
func Authenticate(authn service.RequestAuthenticator, cookies CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := authn.Authenticate(r.Context(), credentialsFrom(r))
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) {
					httpx.WriteError(w, r, err)
					return
				}
				httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{Error: domain.Message(err)})
				return
			}
			if res.NewTokenIssued {
				cookies.SetAccess(w, res.NewAccessToken)
			}
			next.ServeHTTP(w, r.WithContext(withAuthResult(r.Context(), res)))
		})
	}
}

// RequireRole must run after Authenticate. The role is the one the token asserts.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := AuthResultFrom(r.Context())
			if !ok {
				httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{Error: "Unauthorized"})
				return
			}
			for _, role := range roles {
				if res.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.WriteJSON(w, http.StatusForbidden, httpx.ErrorBody{Error: "Forbidden"})
		})
	}
}
