package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"aquapulse/internal/domain"
)

// OrderStore and PaymentMethodStore are read-only views used for login enrichment.

type OrderStore struct{ db *gorm.DB }

func (s *Store) Orders() *OrderStore { return &OrderStore{db: s.DB} }

func (o *OrderStore) IDsByUserID(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := o.db.WithContext(ctx).Model(&domain.Order{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("id", &ids).Error
	return ids, translate(err)
}

type PaymentMethodStore struct{ db *gorm.DB }

func (s *Store) PaymentMethods() *PaymentMethodStore { return &PaymentMethodStore{db: s.DB} }

func (p *PaymentMethodStore) IDsByUserID(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := p.db.WithContext(ctx).Model(&domain.PaymentMethod{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("id", &ids).Error
	return ids, translate(err)
}
