package impl

import (
	"errors"

	"aquapulse/internal/domain"
)

var (
	ErrEmptyPassword   = domain.Validation("Password is required")
	ErrPasswordTooLong = domain.Validation("Password must be at most 72 bytes")
	ErrRegistration    = domain.Validation("All fields are required and password must be at least 8 characters.")
	ErrEmailFormat     = domain.Validation("Invalid email format.")
	ErrCompanyRequired = domain.Validation("Company is required for suppliers")
	ErrRegisterFailed  = domain.Validation("Registration failed. Please try again.")
	ErrPasswordLength  = domain.Validation("Password must be at least 8 characters.")

	ErrOldPassword       = domain.BadRequest("Old password is incorrect")
	ErrVerificationToken = domain.BadRequest("Invalid or expired verification token")
	ErrResetCode         = domain.BadRequest("Invalid or expired code")

	ErrNoToken             = domain.Unauthorized("No token provided")
	ErrAccessTokenInvalid  = domain.Unauthorized("Invalid or expired access token")
	ErrRefreshTokenInvalid = domain.Unauthorized("Invalid or expired refresh token")
	ErrPrincipalGone       = domain.Unauthorized("User not found")

	ErrTokenRevoked = errors.New("token revoked")
)
