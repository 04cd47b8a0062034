package service

import (
	"context"

	"aquapulse/internal/domain"
)

// PrincipalResolver finds a principal across the user and supplier stores.
// Users take precedence. Results are sanitized; a miss returns nil, nil.
type PrincipalResolver interface {
	FindByID(ctx context.Context, id string) (*domain.Principal, error)
	FindByEmail(ctx context.Context, email string) (*domain.Principal, error)
}
