package domain

import "time"

// Order and PaymentMethod are owned by the ordering side of the marketplace.
// The auth core only reads their ids when enriching a customer login.

type Order struct {
	ID          OrderID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	OrderNumber string     `gorm:"type:text;uniqueIndex" db:"order_number" json:"orderNumber"`
	UserID      UserID     `gorm:"type:uuid;index" db:"user_id" json:"userId"`
	SupplierID  SupplierID `gorm:"type:uuid;index" db:"supplier_id" json:"supplierId"`
	Status      string     `gorm:"type:text;not null" db:"status" json:"status"`
	CreatedAt   time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
}

func (Order) TableName() string { return "orders" }

type PaymentMethod struct {
	ID                  PaymentMethodID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	UserID              UserID          `gorm:"type:uuid;index" db:"user_id" json:"userId"`
	PaymentProviderType string          `gorm:"type:text;not null" db:"payment_provider_type" json:"paymentProviderType"`
	LastFour            string          `gorm:"type:text" db:"last_four" json:"lastFour,omitempty"`
	IsDefault           bool            `gorm:"not null" db:"is_default" json:"isDefault"`
	CreatedAt           time.Time       `gorm:"not null" db:"created_at" json:"createdAt"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }
