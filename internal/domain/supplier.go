package domain

import "time"

type ServiceArea struct {
	Region      string   `json:"region"`
	PostalCodes []string `json:"postalCodes"`
}

type PricingTier struct {
	MinVolume     float64 `json:"minVolume"`
	MaxVolume     float64 `json:"maxVolume"`
	PricePerLiter float64 `json:"pricePerLiter"`
}

type Review struct {
	UserID  UserID    `json:"userId"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}

type Supplier struct {
	ID          SupplierID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Credentials `gorm:"embedded"`
	Role        Role   `gorm:"type:text;not null;default:supplier" db:"role" json:"role"`
	FirstName   string `gorm:"type:text" db:"first_name" json:"firstName,omitempty"`
	LastName    string `gorm:"type:text" db:"last_name" json:"lastName,omitempty"`
	PhoneNumber string `gorm:"type:text" db:"phone_number" json:"phoneNumber,omitempty"`
	Company     string `gorm:"type:text;not null" db:"company" json:"company"`

	ServiceAreas    []ServiceArea `gorm:"type:jsonb;serializer:json" db:"service_areas" json:"serviceAreas"`
	Pricing         []PricingTier `gorm:"type:jsonb;serializer:json" db:"pricing" json:"pricing"`
	AvgResponseTime float64       `gorm:"not null;default:0" db:"avg_response_time" json:"avgResponseTime"`
	Rating          float64       `gorm:"not null;default:0" db:"rating" json:"rating"`
	Reviews         []Review      `gorm:"type:jsonb;serializer:json" db:"reviews" json:"reviews"`
	Active          bool          `gorm:"not null" db:"active" json:"active"`

	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Supplier) TableName() string { return "suppliers" }
