package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"aquapulse/internal/config"
	"aquapulse/internal/events"
	"aquapulse/internal/mailer"
	"aquapulse/internal/revocation"
	"aquapulse/internal/service"
	impl "aquapulse/internal/service/impl"
	"aquapulse/internal/store"
	"aquapulse/pkg/db"
)

const denylistSize = 100_000

// App holds the wired auth core. Close releases every adapter it opened.
type App struct {
	Config    config.Config
	Store     *store.Store
	Passwords *impl.PasswordServiceImpl
	Tokens    *impl.TokenServiceImpl
	Resolver  *impl.PrincipalResolverImpl
	Auth      *impl.AuthServiceImpl
	Authn     *impl.RequestAuthenticatorImpl

	closers []func() error
}

func TokenConfig(cfg config.Config) impl.TokenConfig {
	return impl.TokenConfig{
		Issuer:        cfg.Issuer,
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
}

// Denylist returns the redis denylist when REDIS_URL is set and an in-process one otherwise.
func Denylist(ctx context.Context, cfg config.Config, log *slog.Logger) (service.TokenDenylist, func() error, error) {
	if cfg.RedisURL == "" {
		log.Info("using in-memory token denylist")
		return revocation.NewMemoryDenylist(denylistSize, cfg.RefreshTTL), func() error { return nil }, nil
	}
	rd, err := revocation.NewRedisDenylist(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rd.Ping(pctx); err != nil {
		_ = rd.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("using redis token denylist")
	return rd, rd.Close, nil
}

func Mailer(cfg config.Config, log *slog.Logger) mailer.Sender {
	if cfg.SMTP.Host == "" {
		log.Info("SMTP_HOST not set, emails are logged only")
		return mailer.LogSender{Logger: log}
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.MailFrom,
		Timeout:  10 * time.Second,
	})
}

func Publisher(cfg config.Config, log *slog.Logger) (events.Publisher, func() error, error) {
	if cfg.NATSURL == "" {
		log.Info("NATS_URL not set, domain events disabled")
		return events.Nop{}, func() error { return nil }, nil
	}
	p, err := events.NewNATSPublisher(cfg.NATSURL, "aquapulse")
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

func OpenStore(cfg config.Config, log *slog.Logger) (*store.Store, error) {
	gdb, err := db.OpenGorm(db.Config{
		DSN:             cfg.DatabaseURL,
		LogSQL:          cfg.LogSQL,
		Logger:          log,
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store.New(gdb), nil
}

// New opens the store and every configured adapter and wires the services on top.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{Config: cfg}

	st, err := OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}
	a.Store = st
	if sqlDB, err := st.DB.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	denylist, closeDenylist, err := Denylist(ctx, cfg, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeDenylist)

	pub, closePub, err := Publisher(cfg, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closePub)

	a.Tokens, err = impl.NewTokenServiceHS256(TokenConfig(cfg), denylist)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Passwords = impl.NewPasswordServiceBcrypt(cfg.BcryptCost)
	a.Resolver = impl.NewPrincipalResolverImpl(st)
	email := impl.NewEmailServiceImpl(Mailer(cfg, log), cfg.BaseURL)
	a.Auth = impl.NewAuthServiceImpl(st, a.Passwords, a.Tokens, email, pub)
	a.Authn = impl.NewRequestAuthenticatorImpl(a.Tokens, a.Resolver)
	return a, nil
}

// Close runs the closers in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
