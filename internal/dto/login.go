package dto

import "aquapulse/internal/domain"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// LoginResponse is the envelope returned by a successful login.
// User is the sanitized principal, enriched with order and payment ids for customers.
type LoginResponse struct {
	User         any               `json:"user"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	Principal    *domain.Principal `json:"-"`
}

// CustomerView is a sanitized customer plus the ids of what they own.
type CustomerView struct {
	*domain.User
	OrderIDs         []string `json:"orderIds"`
	PaymentMethodIDs []string `json:"paymentMethodIds"`
}
