package domain

import "time"

type Address struct {
	Street     string   `gorm:"type:text" db:"street" json:"street,omitempty"`
	City       string   `gorm:"type:text" db:"city" json:"city,omitempty"`
	State      string   `gorm:"type:text" db:"state" json:"state,omitempty"`
	PostalCode string   `gorm:"type:text" db:"postal_code" json:"postalCode,omitempty"`
	Country    string   `gorm:"type:text" db:"country" json:"country,omitempty"`
	Latitude   *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude  *float64 `db:"longitude" json:"longitude,omitempty"`
}

type NotificationPreferences struct {
	Push  bool `gorm:"not null" db:"push" json:"push"`
	Email bool `gorm:"not null" db:"email" json:"email"`
	SMS   bool `gorm:"not null" db:"sms" json:"sms"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Push: true, Email: true}
}

// User is a customer or an admin.
type User struct {
	ID          UserID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Credentials `gorm:"embedded"`
	Role        Role   `gorm:"type:text;not null;default:customer" db:"role" json:"role"`
	FirstName   string `gorm:"type:text;not null" db:"first_name" json:"firstName"`
	LastName    string `gorm:"type:text;not null" db:"last_name" json:"lastName"`
	PhoneNumber string `gorm:"type:text" db:"phone_number" json:"phoneNumber,omitempty"`

	Address                 Address                 `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	AutoOrder               bool                    `gorm:"not null" db:"auto_order" json:"autoOrder"`
	NotificationPreferences NotificationPreferences `gorm:"embedded;embeddedPrefix:notify_" json:"notificationPreferences"`
	PreferredSupplierID     *SupplierID             `gorm:"type:uuid" db:"preferred_supplier_id" json:"preferredSupplier,omitempty"`

	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }
