package http

import (
	"net/http"
	"time"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

type CookieConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secure     bool
	Domain     string
}

func (c CookieConfig) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c CookieConfig) SetAccess(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(AccessCookie, token, c.AccessTTL))
}

func (c CookieConfig) SetRefresh(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(RefreshCookie, token, c.RefreshTTL))
}

func (c CookieConfig) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		ck := c.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		http.SetCookie(w, ck)
	}
}
