package dto

import "aquapulse/internal/domain"

type RegisterUserRequest struct {
	Email                   string                          `json:"email"`
	Password                string                          `json:"password,omitempty"`
	FirstName               string                          `json:"firstName"`
	LastName                string                          `json:"lastName"`
	PhoneNumber             string                          `json:"phoneNumber,omitempty"`
	Address                 *domain.Address                 `json:"address,omitempty"`
	AutoOrder               bool                            `json:"autoOrder,omitempty"`
	NotificationPreferences *domain.NotificationPreferences `json:"notificationPreferences,omitempty"`
	PreferredSupplierID     string                          `json:"preferredSupplier,omitempty"`
	Role                    domain.Role                     `json:"role,omitempty"`
}

type RegisterSupplierRequest struct {
	Email           string               `json:"email"`
	Password        string               `json:"password,omitempty"`
	FirstName       string               `json:"firstName,omitempty"`
	LastName        string               `json:"lastName,omitempty"`
	PhoneNumber     string               `json:"phoneNumber,omitempty"`
	Company         string               `json:"company"`
	ServiceAreas    []domain.ServiceArea `json:"serviceAreas,omitempty"`
	Pricing         []domain.PricingTier `json:"pricing,omitempty"`
	AvgResponseTime float64              `json:"avgResponseTime,omitempty"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
