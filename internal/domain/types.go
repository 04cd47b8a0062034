package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type SupplierID = uuid.UUID
type OrderID = uuid.UUID
type PaymentMethodID = uuid.UUID

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleSupplier Role = "supplier"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSupplier:
		return true
	}
	return false
}
