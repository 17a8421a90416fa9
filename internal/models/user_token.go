package models

import "time"

// UserToken is a stored refresh token
type UserToken struct {
	ID        int
	UserID    int
	Token     string
	CreatedAt time.Time
}

// PasswordResetToken is a stored password reset token, only its SHA-256 hash is kept
type PasswordResetToken struct {
	ID        int
	UserID    int
	TokenHash string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenCleanupResult reports how many stale tokens were removed
type TokenCleanupResult struct {
	RefreshTokens int `json:"refreshTokens"`
	ResetTokens   int `json:"resetTokens"`
}
