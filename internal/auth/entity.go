// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

type RefreshToken struct {
	ID           string     `db:"id"`
	UserID       int64      `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsValid() bool {
	return !t.IsExpired() && !t.IsRevoked() && !t.IsUsed
}

func (t *RefreshToken) MarkAsUsed(replacedByID string) {
	now := time.Now()
	t.IsUsed = true
	t.UsedAt = &now
	t.ReplacedByID = &replacedByID
}

func (t *RefreshToken) Revoke() {
	now := time.Now()
	t.RevokedAt = &now
}

// PasswordReset is a single-use reset grant. Only the hash of the
// emailed token is stored.
type PasswordReset struct {
	ID        int64      `db:"id"`
	UserID    int64      `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
	UsedAt    *time.Time `db:"used_at"`
}

func (p *PasswordReset) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}

func (p *PasswordReset) IsUsed() bool {
	return p.UsedAt != nil
}

func (p *PasswordReset) IsValid() bool {
	return !p.IsExpired() && !p.IsUsed()
}

// EmailVerification mirrors PasswordReset for address confirmation.
type EmailVerification struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	TokenHash   string     `db:"token_hash"`
	ExpiresAt   time.Time  `db:"expires_at"`
	CreatedAt   time.Time  `db:"created_at"`
	ConfirmedAt *time.Time `db:"confirmed_at"`
}

func (v *EmailVerification) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}

func (v *EmailVerification) IsConfirmed() bool {
	return v.ConfirmedAt != nil
}

func (v *EmailVerification) IsValid() bool {
	return !v.IsExpired() && !v.IsConfirmed()
}
