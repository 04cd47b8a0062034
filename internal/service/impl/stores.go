package impl

import (
	"context"
	"time"

	"github.com/google/uuid"

	"aquapulse/internal/domain"
	"aquapulse/internal/store"
)

// Narrow views of the credential store. *store.UserStore and *store.SupplierStore satisfy them.

type credentialStore interface {
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	SetResetCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
	ConsumeResetCode(ctx context.Context, id uuid.UUID, code, hash string, now time.Time) error
	ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error)
}

type userStore interface {
	credentialStore
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type supplierStore interface {
	credentialStore
	Create(ctx context.Context, sup *domain.Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error)
	GetByEmail(ctx context.Context, email string) (*domain.Supplier, error)
}

type idLister interface {
	IDsByUserID(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type stores struct {
	users          userStore
	suppliers      supplierStore
	orders         idLister
	paymentMethods idLister
}

func storesFrom(st *store.Store) stores {
	return stores{
		users:          st.Users(),
		suppliers:      st.Suppliers(),
		orders:         st.Orders(),
		paymentMethods: st.PaymentMethods(),
	}
}

func (s stores) credentialsOf(p *domain.Principal) credentialStore {
	switch p.Kind {
	case domain.PrincipalUser:
		return s.users
	case domain.PrincipalSupplier:
		return s.suppliers
	}
	return nil
}
