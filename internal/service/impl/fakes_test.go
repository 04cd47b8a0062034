package impl

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"aquapulse/internal/domain"
	"aquapulse/internal/mailer"
	"aquapulse/internal/store"
)

// memoryStore holds both principal tables plus the reference collections.
type memoryStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*domain.User
	suppliers map[uuid.UUID]*domain.Supplier
	orders    map[uuid.UUID][]uuid.UUID
	payments  map[uuid.UUID][]uuid.UUID

	failGet error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:     make(map[uuid.UUID]*domain.User),
		suppliers: make(map[uuid.UUID]*domain.Supplier),
		orders:    make(map[uuid.UUID][]uuid.UUID),
		payments:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *memoryStore) stores() stores {
	return stores{
		users:          memUsers{m},
		suppliers:      memSuppliers{m},
		orders:         memIDs{m: m, pick: func(m *memoryStore) map[uuid.UUID][]uuid.UUID { return m.orders }},
		paymentMethods: memIDs{m: m, pick: func(m *memoryStore) map[uuid.UUID][]uuid.UUID { return m.payments }},
	}
}

// memCreds implements credentialStore over one table.
type memCreds struct {
	m     *memoryStore
	table domain.PrincipalKind
}

func (c memCreds) all() map[uuid.UUID]*domain.Credentials {
	out := map[uuid.UUID]*domain.Credentials{}
	if c.table == domain.PrincipalUser {
		for id, u := range c.m.users {
			out[id] = &u.Credentials
		}
		return out
	}
	for id, s := range c.m.suppliers {
		out[id] = &s.Credentials
	}
	return out
}

func (c memCreds) find(id uuid.UUID) *domain.Credentials { return c.all()[id] }

func (c memCreds) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	cr := c.find(id)
	if cr == nil {
		return store.ErrRecordNotFound
	}
	cr.PasswordHash = hash
	return nil
}

func (c memCreds) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	cr := c.find(id)
	if cr == nil {
		return store.ErrRecordNotFound
	}
	cr.IsEmailVerified = true
	cr.EmailVerificationToken = ""
	return nil
}

func (c memCreds) SetResetCode(_ context.Context, id uuid.UUID, code string, expiry time.Time) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	cr := c.find(id)
	if cr == nil {
		return store.ErrRecordNotFound
	}
	cr.ResetPasswordCode = code
	cr.ResetPasswordCodeExpiry = &expiry
	return nil
}

func (c memCreds) ConsumeResetCode(_ context.Context, id uuid.UUID, code, hash string, now time.Time) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	cr := c.find(id)
	if cr == nil || !cr.ResetCodeMatches(code, now) {
		return store.ErrRecordNotFound
	}
	cr.PasswordHash = hash
	cr.ResetPasswordCode = ""
	cr.ResetPasswordCodeExpiry = nil
	return nil
}

func (c memCreds) ClearExpiredResetCodes(_ context.Context, now time.Time) (int64, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	var n int64
	for _, cr := range c.all() {
		if cr.ResetPasswordCodeExpiry != nil && cr.ResetPasswordCodeExpiry.Before(now) {
			cr.ResetPasswordCode = ""
			cr.ResetPasswordCodeExpiry = nil
			n++
		}
	}
	return n, nil
}

type memUsers struct{ m *memoryStore }

func (u memUsers) creds() memCreds { return memCreds{m: u.m, table: domain.PrincipalUser} }

func (u memUsers) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return u.creds().SetPasswordHash(ctx, id, hash)
}
func (u memUsers) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return u.creds().MarkEmailVerified(ctx, id)
}
func (u memUsers) SetResetCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	return u.creds().SetResetCode(ctx, id, code, expiry)
}
func (u memUsers) ConsumeResetCode(ctx context.Context, id uuid.UUID, code, hash string, now time.Time) error {
	return u.creds().ConsumeResetCode(ctx, id, code, hash, now)
}
func (u memUsers) ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error) {
	return u.creds().ClearExpiredResetCodes(ctx, now)
}

func (u memUsers) Create(_ context.Context, usr *domain.User) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	for _, other := range u.m.users {
		if other.Email == usr.Email {
			return store.ErrDuplicate
		}
	}
	cp := *usr
	u.m.users[usr.ID] = &cp
	return nil
}

func (u memUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	if u.m.failGet != nil {
		return nil, u.m.failGet
	}
	usr, ok := u.m.users[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *usr
	return &cp, nil
}

func (u memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	if u.m.failGet != nil {
		return nil, u.m.failGet
	}
	for _, usr := range u.m.users {
		if usr.Email == email {
			cp := *usr
			return &cp, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

type memSuppliers struct{ m *memoryStore }

func (s memSuppliers) creds() memCreds { return memCreds{m: s.m, table: domain.PrincipalSupplier} }

func (s memSuppliers) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return s.creds().SetPasswordHash(ctx, id, hash)
}
func (s memSuppliers) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return s.creds().MarkEmailVerified(ctx, id)
}
func (s memSuppliers) SetResetCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	return s.creds().SetResetCode(ctx, id, code, expiry)
}
func (s memSuppliers) ConsumeResetCode(ctx context.Context, id uuid.UUID, code, hash string, now time.Time) error {
	return s.creds().ConsumeResetCode(ctx, id, code, hash, now)
}
func (s memSuppliers) ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error) {
	return s.creds().ClearExpiredResetCodes(ctx, now)
}

func (s memSuppliers) Create(_ context.Context, sup *domain.Supplier) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, other := range s.m.suppliers {
		if other.Email == sup.Email {
			return store.ErrDuplicate
		}
	}
	cp := *sup
	s.m.suppliers[sup.ID] = &cp
	return nil
}

func (s memSuppliers) GetByID(_ context.Context, id uuid.UUID) (*domain.Supplier, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sup, ok := s.m.suppliers[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *sup
	return &cp, nil
}

func (s memSuppliers) GetByEmail(_ context.Context, email string) (*domain.Supplier, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, sup := range s.m.suppliers {
		if sup.Email == email {
			cp := *sup
			return &cp, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

type memIDs struct {
	m    *memoryStore
	pick func(*memoryStore) map[uuid.UUID][]uuid.UUID
}

func (l memIDs) IDsByUserID(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	return append([]uuid.UUID(nil), l.pick(l.m)[userID]...), nil
}

// stubEmailService records what would have been mailed.
type stubEmailService struct {
	mu            sync.Mutex
	verifications map[string]string
	resets        map[string]string
	err           error
}

func newStubEmailService() *stubEmailService {
	return &stubEmailService{verifications: map[string]string{}, resets: map[string]string{}}
}

func (s *stubEmailService) SendVerification(_ context.Context, to, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[to] = token
	return s.err
}

func (s *stubEmailService) SendPasswordReset(_ context.Context, to, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[to] = code
	return s.err
}

// captureSender records rendered messages.
type captureSender struct {
	sent []mailer.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, m mailer.Message) error {
	c.sent = append(c.sent, m)
	return c.err
}

var errStoreDown = errors.New("store unavailable")
