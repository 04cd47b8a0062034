package impl

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"aquapulse/internal/domain"
	"aquapulse/internal/store"
)

type PrincipalResolverImpl struct {
	users     userStore
	suppliers supplierStore
}

func NewPrincipalResolverImpl(st *store.Store) *PrincipalResolverImpl {
	s := storesFrom(st)
	return &PrincipalResolverImpl{users: s.users, suppliers: s.suppliers}
}

func (r *PrincipalResolverImpl) FindByID(ctx context.Context, id string) (*domain.Principal, error) {
	p, err := r.lookupByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return p.Sanitized(), nil
}

func (r *PrincipalResolverImpl) FindByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	p, err := r.lookupByEmail(ctx, email)
	if err != nil || p == nil {
		return nil, err
	}
	return p.Sanitized(), nil
}

// lookupByID returns the unsanitized principal; users are probed before suppliers.
func (r *PrincipalResolverImpl) lookupByID(ctx context.Context, raw string) (*domain.Principal, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}
	u, err := r.users.GetByID(ctx, id)
	if err == nil {
		return domain.UserPrincipal(u), nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}
	s, err := r.suppliers.GetByID(ctx, id)
	if err == nil {
		return domain.SupplierPrincipal(s), nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

func (r *PrincipalResolverImpl) lookupByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	u, err := r.users.GetByEmail(ctx, email)
	if err == nil {
		return domain.UserPrincipal(u), nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}
	s, err := r.suppliers.GetByEmail(ctx, email)
	if err == nil {
		return domain.SupplierPrincipal(s), nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
