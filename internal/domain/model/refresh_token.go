package model

import "time"

// RefreshTokenは長命トークン。ローテーション済み・失効済みでも
// リプレイ検知のため行は消さない。
type RefreshToken struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	AccountID int64  `gorm:"not null;index"`
	Token     string `gorm:"uniqueIndex;not null"`

	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null"`

	// ローテーション/失効時にセット。nilなら未失効。
	RevokedAt *time.Time

	// ローテーションで置き換えた新トークンの値（チェーン）
	ReplacedByToken string
}

// 期限ちょうども期限切れ扱い（now >= expires）。
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// 未失効かつ未期限切れ。
func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && !t.IsExpired(now)
}
