package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"aquapulse/internal/domain"
)

type SupplierStore struct {
	credentialWriter
	db *gorm.DB
}

func (s *Store) Suppliers() *SupplierStore {
	return &SupplierStore{credentialWriter: credentialWriter{db: s.DB, model: &domain.Supplier{}}, db: s.DB}
}

func (u *SupplierStore) Create(ctx context.Context, sup *domain.Supplier) error {
	if sup.ID == uuid.Nil {
		sup.ID = uuid.New()
	}
	if sup.Role == "" {
		sup.Role = domain.RoleSupplier
	}
	now := time.Now().UTC()
	if sup.CreatedAt.IsZero() {
		sup.CreatedAt = now
	}
	sup.UpdatedAt = now
	return translate(u.db.WithContext(ctx).Create(sup).Error)
}

func (u *SupplierStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	var sup domain.Supplier
	if err := u.db.WithContext(ctx).First(&sup, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sup, nil
}

func (u *SupplierStore) GetByEmail(ctx context.Context, email string) (*domain.Supplier, error) {
	var sup domain.Supplier
	if err := u.db.WithContext(ctx).First(&sup, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &sup, nil
}
