package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// credentialWriter updates the embedded credential columns of one principal table.
type credentialWriter struct {
	db    *gorm.DB
	model any
}

func (c credentialWriter) update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := c.db.WithContext(ctx).Model(c.model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (c credentialWriter) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return c.update(ctx, id, map[string]any{"password_hash": hash})
}

func (c credentialWriter) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return c.update(ctx, id, map[string]any{
		"is_email_verified":        true,
		"email_verification_token": "",
	})
}

func (c credentialWriter) SetResetCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	return c.update(ctx, id, map[string]any{
		"reset_password_code":        code,
		"reset_password_code_expiry": expiry.UTC(),
	})
}

// ConsumeResetCode replaces the password hash and clears the reset code in one
// statement, only while code is still the outstanding, unexpired code.
func (c credentialWriter) ConsumeResetCode(ctx context.Context, id uuid.UUID, code, hash string, now time.Time) error {
	res := c.db.WithContext(ctx).Model(c.model).
		Where("id = ? AND reset_password_code = ? AND reset_password_code_expiry >= ?", id, code, now.UTC()).
		Updates(map[string]any{
			"password_hash":              hash,
			"reset_password_code":        "",
			"reset_password_code_expiry": nil,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (c credentialWriter) ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error) {
	res := c.db.WithContext(ctx).Model(c.model).
		Where("reset_password_code_expiry IS NOT NULL AND reset_password_code_expiry < ?", now.UTC()).
		Updates(map[string]any{
			"reset_password_code":        "",
			"reset_password_code_expiry": nil,
		})
	return res.RowsAffected, translate(res.Error)
}
