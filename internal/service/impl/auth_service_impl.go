package impl

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"aquapulse/internal/domain"
	"aquapulse/internal/dto"
	"aquapulse/internal/events"
	"aquapulse/internal/observability/metrics"
	"aquapulse/internal/observability/middleware"
	"aquapulse/internal/service"
	"aquapulse/internal/store"
)

const (
	minPasswordLen = 8
	resetCodeTTL   = 10 * time.Minute
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthServiceImpl struct {
	stores   stores
	resolver *PrincipalResolverImpl

	PasswordService service.PasswordService
	TService        service.TokenService
	Email           service.EmailService
	Events          events.Publisher

	now       func() time.Time
	resetCode func() (string, error)
}

func NewAuthServiceImpl(
	st *store.Store,
	passwordService service.PasswordService,
	tokenService service.TokenService,
	emailService service.EmailService,
	publisher events.Publisher,
) *AuthServiceImpl {
	return newAuthService(storesFrom(st), passwordService, tokenService, emailService, publisher)
}

func newAuthService(
	s stores,
	passwordService service.PasswordService,
	tokenService service.TokenService,
	emailService service.EmailService,
	publisher events.Publisher,
) *AuthServiceImpl {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &AuthServiceImpl{
		stores:          s,
		resolver:        &PrincipalResolverImpl{users: s.users, suppliers: s.suppliers},
		PasswordService: passwordService,
		TService:        tokenService,
		Email:           emailService,
		Events:          publisher,
		now:             time.Now,
		resetCode:       generateResetCode,
	}
}

// ValidateCredentials returns the sanitized principal on a match and nil, nil on a wrong password.
// An unknown email is a NotFound error so callers can tell the two apart for auditing.
func (a *AuthServiceImpl) ValidateCredentials(ctx context.Context, email, password string) (*domain.Principal, error) {
	log := middleware.Logger(ctx)

	p, err := a.resolver.lookupByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup principal: %w", err)
	}
	if p == nil {
		metrics.AuthLoginsTotal.WithLabelValues("unknown_email").Inc()
		return nil, domain.ErrUserNotFound
	}

	creds := p.Credentials()
	ok, err := a.PasswordService.Verify(password, creds.PasswordHash)
	if err != nil {
		log.Error("stored password hash unreadable", "principal_id", p.ID(), "err", err)
		return nil, domain.Internal("Unable to verify credentials")
	}
	if !ok {
		metrics.AuthLoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, nil
	}

	if a.PasswordService.NeedsRehash(creds.PasswordHash) {
		if hash, err := a.PasswordService.Hash(password); err == nil {
			if err := a.stores.credentialsOf(p).SetPasswordHash(ctx, p.ID(), hash); err != nil {
				log.Warn("password rehash not persisted", "principal_id", p.ID(), "err", err)
			}
		}
	}
	return p.Sanitized(), nil
}

// Login issues a token pair for p. Customers are enriched with their order and payment method ids.
func (a *AuthServiceImpl) Login(ctx context.Context, p *domain.Principal) (*dto.LoginResponse, error) {
	result := "success"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	clean := p.Sanitized()
	isCustomer := clean.Kind == domain.PrincipalUser && clean.Role() == domain.RoleCustomer

	var (
		pair       *dto.TokenPair
		orderIDs   []uuid.UUID
		paymentIDs []uuid.UUID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pair, err = a.TService.IssuePair(gctx, clean)
		return err
	})
	if isCustomer {
		g.Go(func() error {
			var err error
			orderIDs, err = a.stores.orders.IDsByUserID(gctx, clean.ID())
			return err
		})
		g.Go(func() error {
			var err error
			paymentIDs, err = a.stores.paymentMethods.IDsByUserID(gctx, clean.ID())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		result = "failure"
		return nil, err
	}

	var user any = clean
	if isCustomer {
		user = dto.CustomerView{
			User:             clean.User,
			OrderIDs:         idStrings(orderIDs),
			PaymentMethodIDs: idStrings(paymentIDs),
		}
	}

	middleware.Logger(ctx).Info("login", "principal_id", clean.ID(), "role", clean.Role())
	return &dto.LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Principal:    clean,
	}, nil
}

func (a *AuthServiceImpl) RegisterUser(ctx context.Context, r dto.RegisterUserRequest) (res *dto.StatusResponse, err error) {
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues("user", metrics.Result(err)).Inc()
	}()

	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return nil, ErrRegistration
	}
	u, err := a.newUser(ctx, r, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if err := a.stores.users.Create(ctx, u); err != nil {
		return nil, a.registrationError(ctx, err)
	}
	a.afterRegister(ctx, domain.UserPrincipal(u))
	return &dto.StatusResponse{Success: true, Message: "Registration successful. Please verify your email."}, nil
}

func (a *AuthServiceImpl) RegisterSupplier(ctx context.Context, r dto.RegisterSupplierRequest) (res *dto.StatusResponse, err error) {
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues("supplier", metrics.Result(err)).Inc()
	}()

	email, hash, err := a.prepareCredentials(ctx, r.Email, r.Password)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.Company) == "" {
		return nil, ErrCompanyRequired
	}
	token, err := randomToken()
	if err != nil {
		return nil, a.registrationError(ctx, err)
	}

	s := &domain.Supplier{
		ID:   uuid.New(),
		Role: domain.RoleSupplier,
		Credentials: domain.Credentials{
			Email:                  email,
			PasswordHash:           hash,
			EmailVerificationToken: token,
		},
		FirstName:       strings.TrimSpace(r.FirstName),
		LastName:        strings.TrimSpace(r.LastName),
		PhoneNumber:     strings.TrimSpace(r.PhoneNumber),
		Company:         strings.TrimSpace(r.Company),
		ServiceAreas:    r.ServiceAreas,
		Pricing:         r.Pricing,
		AvgResponseTime: r.AvgResponseTime,
		Active:          true,
	}
	if err := a.stores.suppliers.Create(ctx, s); err != nil {
		return nil, a.registrationError(ctx, err)
	}
	a.afterRegister(ctx, domain.SupplierPrincipal(s))
	return &dto.StatusResponse{Success: true, Message: "Registration successful. Please verify your email."}, nil
}

// CreateAdmin provisions a pre-verified admin. It is reachable only from the operator CLI.
func (a *AuthServiceImpl) CreateAdmin(ctx context.Context, r dto.RegisterUserRequest) (*domain.Principal, error) {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return nil, ErrRegistration
	}
	u, err := a.newUser(ctx, r, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	u.IsEmailVerified = true
	u.EmailVerificationToken = ""
	if err := a.stores.users.Create(ctx, u); err != nil {
		return nil, a.registrationError(ctx, err)
	}
	p := domain.UserPrincipal(u)
	a.publish(ctx, events.SubjectUserRegistered, events.UserRegistered{
		PrincipalID: u.ID.String(), Kind: string(p.Kind), Email: u.Email, Role: string(u.Role), At: a.now().UTC(),
	})
	return p.Sanitized(), nil
}

func (a *AuthServiceImpl) newUser(ctx context.Context, r dto.RegisterUserRequest, role domain.Role) (*domain.User, error) {
	email, hash, err := a.prepareCredentials(ctx, r.Email, r.Password)
	if err != nil {
		return nil, err
	}
	token, err := randomToken()
	if err != nil {
		return nil, a.registrationError(ctx, err)
	}

	u := &domain.User{
		ID:   uuid.New(),
		Role: role,
		Credentials: domain.Credentials{
			Email:                  email,
			PasswordHash:           hash,
			EmailVerificationToken: token,
		},
		FirstName:               strings.TrimSpace(r.FirstName),
		LastName:                strings.TrimSpace(r.LastName),
		PhoneNumber:             strings.TrimSpace(r.PhoneNumber),
		AutoOrder:               r.AutoOrder,
		NotificationPreferences: domain.DefaultNotificationPreferences(),
	}
	if r.Address != nil {
		u.Address = *r.Address
	}
	if r.NotificationPreferences != nil {
		u.NotificationPreferences = *r.NotificationPreferences
	}
	if r.PreferredSupplierID != "" {
		id, err := uuid.Parse(r.PreferredSupplierID)
		if err != nil {
			return nil, domain.Validation("Invalid preferred supplier")
		}
		u.PreferredSupplierID = &id
	}
	return u, nil
}

// prepareCredentials validates and normalizes the email, enforces cross-store uniqueness
// and hashes the password.
func (a *AuthServiceImpl) prepareCredentials(ctx context.Context, email, password string) (string, string, error) {
	email = normalizeEmail(email)
	if email == "" || len(strings.TrimSpace(password)) < minPasswordLen {
		return "", "", ErrRegistration
	}
	if !emailPattern.MatchString(email) {
		return "", "", ErrEmailFormat
	}
	existing, err := a.resolver.lookupByEmail(ctx, email)
	if err != nil {
		return "", "", a.registrationError(ctx, err)
	}
	if existing != nil {
		return "", "", domain.ErrEmailExists
	}
	hash, err := a.PasswordService.Hash(password)
	if err != nil {
		return "", "", a.registrationError(ctx, err)
	}
	return email, hash, nil
}

// registrationError passes domain errors through and hides everything else.
func (a *AuthServiceImpl) registrationError(ctx context.Context, err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return domain.ErrEmailExists
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	middleware.Logger(ctx).Error("registration failed", "err", err)
	return ErrRegisterFailed
}

func (a *AuthServiceImpl) afterRegister(ctx context.Context, p *domain.Principal) {
	log := middleware.Logger(ctx)
	creds := p.Credentials()
	if a.Email != nil {
		if err := a.Email.SendVerification(ctx, creds.Email, creds.EmailVerificationToken); err != nil {
			log.Warn("verification email not sent", "principal_id", p.ID(), "err", err)
		}
	}
	a.publish(ctx, events.SubjectUserRegistered, events.UserRegistered{
		PrincipalID: p.ID().String(),
		Kind:        string(p.Kind),
		Email:       creds.Email,
		Role:        string(p.Role()),
		At:          a.now().UTC(),
	})
	log.Info("registered principal", "principal_id", p.ID(), "kind", p.Kind)
}

func (a *AuthServiceImpl) VerifyEmail(ctx context.Context, email, token string) (*dto.StatusResponse, error) {
	p, err := a.resolver.lookupByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	creds := p.Credentials()
	if creds.IsEmailVerified {
		return &dto.StatusResponse{Success: true, Message: "Email already verified."}, nil
	}
	if creds.EmailVerificationToken == "" ||
		subtle.ConstantTimeCompare([]byte(creds.EmailVerificationToken), []byte(token)) != 1 {
		return nil, ErrVerificationToken
	}
	if err := a.stores.credentialsOf(p).MarkEmailVerified(ctx, p.ID()); err != nil {
		return nil, err
	}
	a.publish(ctx, events.SubjectEmailVerified, events.EmailVerified{
		PrincipalID: p.ID().String(), Email: creds.Email, At: a.now().UTC(),
	})
	return &dto.StatusResponse{Success: true, Message: "Email verified successfully."}, nil
}

// ChangePassword re-reads the stored hash; the caller's principal is sanitized and not trusted for it.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, principalID, oldPassword, newPassword string) (*dto.MessageResponse, error) {
	p, err := a.resolver.lookupByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	if len(strings.TrimSpace(newPassword)) < minPasswordLen {
		return nil, ErrPasswordLength
	}
	ok, err := a.PasswordService.Verify(oldPassword, p.Credentials().PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrOldPassword
	}
	hash, err := a.PasswordService.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	if err := a.stores.credentialsOf(p).SetPasswordHash(ctx, p.ID(), hash); err != nil {
		return nil, err
	}
	a.publish(ctx, events.SubjectPasswordChanged, events.PasswordChanged{PrincipalID: p.ID().String(), At: a.now().UTC()})
	middleware.Logger(ctx).Info("password changed", "principal_id", p.ID())
	return &dto.MessageResponse{Message: "Password updated successfully"}, nil
}

// ForgotPassword stores a fresh 6-digit code valid for 10 minutes and mails it.
// Concurrent requests for one email are last-write-wins.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) (res *dto.StatusResponse, err error) {
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("request", metrics.Result(err)).Inc()
	}()

	p, err := a.resolver.lookupByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	code, err := a.resetCode()
	if err != nil {
		return nil, fmt.Errorf("generate reset code: %w", err)
	}
	expiry := a.now().UTC().Add(resetCodeTTL)
	if err := a.stores.credentialsOf(p).SetResetCode(ctx, p.ID(), code, expiry); err != nil {
		return nil, err
	}

	if a.Email != nil {
		if err := a.Email.SendPasswordReset(ctx, p.Email(), code); err != nil {
			middleware.Logger(ctx).Warn("reset code email not sent", "principal_id", p.ID(), "err", err)
		}
	}
	a.publish(ctx, events.SubjectPasswordResetRequested, events.PasswordResetRequested{
		PrincipalID: p.ID().String(), Email: p.Email(), ExpiresAt: expiry, At: a.now().UTC(),
	})
	return &dto.StatusResponse{Success: true}, nil
}

// VerifyResetCode never fails; problems are reported in the response body.
func (a *AuthServiceImpl) VerifyResetCode(ctx context.Context, email, code string) *dto.StatusResponse {
	p, err := a.resolver.lookupByEmail(ctx, email)
	if err != nil {
		middleware.Logger(ctx).Error("reset code lookup failed", "err", err)
		return &dto.StatusResponse{Success: false, Message: ErrResetCode.Error()}
	}
	if p == nil {
		return &dto.StatusResponse{Success: false, Message: domain.ErrUserNotFound.Error()}
	}
	if !p.Credentials().ResetCodeMatches(code, a.now()) {
		metrics.PasswordResetsTotal.WithLabelValues("verify", "failure").Inc()
		return &dto.StatusResponse{Success: false, Message: ErrResetCode.Error()}
	}
	metrics.PasswordResetsTotal.WithLabelValues("verify", "success").Inc()
	return &dto.StatusResponse{Success: true}
}

// ResetPassword replaces the password and clears the code in a single conditional write.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, email, code, newPassword string) (res *dto.StatusResponse, err error) {
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("reset", metrics.Result(err)).Inc()
	}()

	p, err := a.resolver.lookupByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	now := a.now()
	if !p.Credentials().ResetCodeMatches(code, now) {
		return nil, ErrResetCode
	}
	if len(strings.TrimSpace(newPassword)) < minPasswordLen {
		return nil, ErrPasswordLength
	}
	hash, err := a.PasswordService.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	if err := a.stores.credentialsOf(p).ConsumeResetCode(ctx, p.ID(), code, hash, now); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrResetCode
		}
		return nil, err
	}
	a.publish(ctx, events.SubjectPasswordReset, events.PasswordReset{PrincipalID: p.ID().String(), At: now.UTC()})
	middleware.Logger(ctx).Info("password reset", "principal_id", p.ID())
	return &dto.StatusResponse{Success: true}, nil
}

func (a *AuthServiceImpl) GetProfile(ctx context.Context, principalID string) (*domain.Principal, error) {
	p, err := a.resolver.FindByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	return p, nil
}

// Logout denylists whichever tokens were presented. Failures are logged only.
func (a *AuthServiceImpl) Logout(ctx context.Context, creds dto.RequestCredentials) error {
	log := middleware.Logger(ctx)
	for _, tok := range []string{creds.AccessToken, creds.RefreshToken} {
		if tok == "" {
			continue
		}
		if err := a.TService.Revoke(ctx, tok); err != nil {
			log.Debug("token not revoked", "err", err)
		}
	}
	return nil
}

// ClearExpiredResetCodes wipes lapsed reset codes in both stores.
func (a *AuthServiceImpl) ClearExpiredResetCodes(ctx context.Context) (int64, error) {
	now := a.now()
	n, err := a.stores.users.ClearExpiredResetCodes(ctx, now)
	if err != nil {
		return n, fmt.Errorf("users: %w", err)
	}
	m, err := a.stores.suppliers.ClearExpiredResetCodes(ctx, now)
	if err != nil {
		return n + m, fmt.Errorf("suppliers: %w", err)
	}
	return n + m, nil
}

func (a *AuthServiceImpl) publish(ctx context.Context, subject string, event any) {
	if err := a.Events.Publish(ctx, subject, event); err != nil {
		middleware.Logger(ctx).Warn("event not published", "subject", subject, "err", err)
	}
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
