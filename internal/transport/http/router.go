package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aquapulse/internal/domain"
	"aquapulse/internal/httpx"
	"aquapulse/internal/observability/middleware"
	"aquapulse/internal/service"
)

type Options struct {
	CORSOrigins []string
	TrustProxy  bool
	// LoginRateLimit is requests per minute per IP on the credential endpoints; 0 disables.
	LoginRateLimit int
	// Ready backs /healthz when set.
	Ready func(context.Context) error
}

func NewRouter(h *Handler, authn service.RequestAuthenticator, opts Options) http.Handler {
	r := chi.NewRouter()

	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.WithRequestAndTrace)
	r.Use(chimw.Recoverer)
	r.Use(httpx.LogRequests(opts.TrustProxy))
	r.Use(middleware.WithMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(opts.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-Trace-ID", RefreshHeader},
		ExposedHeaders:   []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				middleware.Logger(r.Context()).Warn("readiness check failed", "err", err)
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	limited := func(next http.Handler) http.Handler { return next }
	if opts.LoginRateLimit > 0 {
		limited = httprate.Limit(opts.LoginRateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				httpx.WriteJSON(w, http.StatusTooManyRequests, httpx.ErrorBody{Error: "Too many requests"})
			}),
		)
	}
	authenticated := Authenticate(authn, h.Cookies)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register-user", h.RegisterUser)
			r.Post("/register-supplier", h.RegisterSupplier)
			r.Post("/verify-email", h.VerifyEmail)
			r.With(limited).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/refresh-token", h.RefreshToken)
			r.With(limited).Post("/forgot-password", h.ForgotPassword)
			r.With(limited).Post("/verify-reset-code", h.VerifyResetCode)
			r.Post("/reset-password", h.ResetPassword)

			r.With(authenticated).Get("/me", h.Me)
			r.With(authenticated).Post("/change-password", h.ChangePassword)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticated, RequireRole(domain.RoleAdmin))
			r.Get("/principals/{id}", h.GetPrincipal)
		})
	})

	return r
}

func originsIfSet(in []string) []string {
	if len(in) == 0 {
		return []string{"*"}
	}
	return in
}
