package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aquapulse/internal/app"
	"aquapulse/internal/config"
	"aquapulse/internal/domain"
	"aquapulse/internal/dto"
	"aquapulse/internal/jwtsigner"
	"aquapulse/internal/observability/logging"
	impl "aquapulse/internal/service/impl"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "authctl",
		Short:         "Operate the AquaPulse auth core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		hashPasswordCmd(),
		issueTokenCmd(),
		verifyTokenCmd(),
		createAdminCmd(),
		migrateCmd(),
	)
	return cmd
}

func logger(cfg config.Config, w io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Config{
		ServiceName: "authctl",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Output:      w,
	})
}

func signerFor(cfg config.Config, refresh bool) (*jwtsigner.Signer, error) {
	secret := cfg.AccessSecret
	if refresh {
		secret = cfg.RefreshSecret
	}
	return jwtsigner.NewHS256(secret, cfg.Issuer)
}

func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password required (flag or stdin)")
	}
	return pw, nil
}

func hashPasswordCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print the bcrypt hash of a password read from --password or stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _ := config.Load()
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			hash, err := impl.NewPasswordServiceBcrypt(cfg.BcryptCost).Hash(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password to hash (default: read stdin)")
	return cmd
}

func issueTokenCmd() *cobra.Command {
	var (
		id, email, role string
		refresh         bool
		ttl             time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Sign an access or refresh token for an arbitrary identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _ := config.Load()
			if !domain.Role(role).Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			signer, err := signerFor(cfg, refresh)
			if err != nil {
				return err
			}
			payload := domain.TokenPayload{PrincipalID: id, Email: email, Role: domain.Role(role), TokenType: domain.TokenAccess}
			if ttl == 0 {
				ttl = cfg.AccessTTL
			}
			if refresh {
				payload.TokenType = domain.TokenRefresh
				if !cmd.Flags().Changed("ttl") {
					ttl = cfg.RefreshTTL
				}
			}
			tok, exp, err := signer.Sign(payload, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "principal id")
	cmd.Flags().StringVar(&email, "email", "", "principal email")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleCustomer), "customer, admin or supplier")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "sign a refresh token with the refresh secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "lifetime (default: configured TTL)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

type verifyReport struct {
	Status  string               `json:"status"`
	Error   string               `json:"error,omitempty"`
	Payload *domain.TokenPayload `json:"payload,omitempty"`
}

func verifyTokenCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "verify-token <token>",
		Short: "Report whether a token is valid, expired or invalid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := config.Load()
			signer, err := signerFor(cfg, refresh)
			if err != nil {
				return err
			}
			want := domain.TokenAccess
			if refresh {
				want = domain.TokenRefresh
			}
			report := inspect(signer, strings.TrimSpace(args[0]), want, time.Now())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if report.Status != "valid" {
				return fmt.Errorf("token %s", report.Status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "verify against the refresh secret")
	return cmd
}

// inspect runs the signature check and the expiry check separately so expired tokens
// still report their payload.
func inspect(signer *jwtsigner.Signer, raw string, want domain.TokenType, now time.Time) verifyReport {
	claims, err := signer.Parse(raw)
	if err != nil {
		return verifyReport{Status: "invalid", Error: err.Error()}
	}
	payload := claims.Payload()
	if err := claims.CheckExpiry(now); err != nil {
		status := "invalid"
		if errors.Is(err, jwtsigner.ErrTokenExpired) {
			status = "expired"
		}
		return verifyReport{Status: status, Error: err.Error(), Payload: &payload}
	}
	if payload.TokenType != want {
		return verifyReport{Status: "invalid", Error: fmt.Sprintf("expected %s token", want), Payload: &payload}
	}
	return verifyReport{Status: "valid", Payload: &payload}
}

func createAdminCmd() *cobra.Command {
	var email, firstName, lastName, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a pre-verified admin user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			log := logger(cfg, cmd.ErrOrStderr())
			st, err := app.OpenStore(cfg, log)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			svc := impl.NewAuthServiceImpl(st, impl.NewPasswordServiceBcrypt(cfg.BcryptCost), nil, nil, nil)
			p, err := svc.CreateAdmin(ctx, dto.RegisterUserRequest{
				Email: email, Password: pw, FirstName: firstName, LastName: lastName,
			})
			if err != nil {
				if msg := domain.Message(err); msg != "" {
					return errors.New(msg)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", p.Email(), p.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&firstName, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "User", "last name")
	cmd.Flags().StringVar(&password, "password", "", "password (default: read stdin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the auth tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger(cfg, cmd.ErrOrStderr())
			st, err := app.OpenStore(cfg, log)
			if err != nil {
				return err
			}
			if err := st.AutoMigrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("migration complete")
			return nil
		},
	}
}
