package domain

import (
	"crypto/subtle"
	"time"
)

// Credentials is the authentication-relevant shape shared by users and suppliers.
// It is embedded into both tables, so the column names are identical.
type Credentials struct {
	Email                   string     `gorm:"type:text;not null;uniqueIndex" db:"email" json:"email"`
	PasswordHash            string     `gorm:"type:text;not null" db:"password_hash" json:"-"`
	IsEmailVerified         bool       `gorm:"not null;default:false" db:"is_email_verified" json:"isEmailVerified"`
	EmailVerificationToken  string     `gorm:"type:text" db:"email_verification_token" json:"-"`
	ResetPasswordCode       string     `gorm:"type:text" db:"reset_password_code" json:"-"`
	ResetPasswordCodeExpiry *time.Time `db:"reset_password_code_expiry" json:"-"`
}

// ResetCodeMatches reports whether code is the outstanding reset code and has not expired at now.
func (c *Credentials) ResetCodeMatches(code string, now time.Time) bool {
	if c.ResetPasswordCode == "" || c.ResetPasswordCodeExpiry == nil || code == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(c.ResetPasswordCode), []byte(code)) != 1 {
		return false
	}
	return !now.After(*c.ResetPasswordCodeExpiry)
}

func (c *Credentials) clearSecrets() {
	c.PasswordHash = ""
	c.EmailVerificationToken = ""
	c.ResetPasswordCode = ""
	c.ResetPasswordCodeExpiry = nil
}
