package events

import "time"

const (
	SubjectUserRegistered         = "user.registered"
	SubjectEmailVerified          = "user.email_verified"
	SubjectPasswordChanged        = "user.password_changed"
	SubjectPasswordResetRequested = "user.password_reset_requested"
	SubjectPasswordReset          = "user.password_reset"
)

type UserRegistered struct {
	PrincipalID string    `json:"principalId"`
	Kind        string    `json:"kind"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	At          time.Time `json:"at"`
}

type EmailVerified struct {
	PrincipalID string    `json:"principalId"`
	Email       string    `json:"email"`
	At          time.Time `json:"at"`
}

type PasswordChanged struct {
	PrincipalID string    `json:"principalId"`
	At          time.Time `json:"at"`
}

type PasswordResetRequested struct {
	PrincipalID string    `json:"principalId"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expiresAt"`
	At          time.Time `json:"at"`
}

type PasswordReset struct {
	PrincipalID string    `json:"principalId"`
	At          time.Time `json:"at"`
}
