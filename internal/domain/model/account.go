package model

import "time"

// Accountは認証用アカウント。
// RefreshTokensはAccountが所有する（削除時はまとめて消える）。
type Account struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Phone        string

	// 現在有効なアクセストークン（fingerprint）。空なら未ログイン扱い。
	CurrentToken string `gorm:"column:current_token"`

	// 外部のemployeesテーブルへのリンク（0はリンクなし）。
	// 重複チェックはusecase側（登録時）で行う。
	EmployeeID int64 `gorm:"index"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Roles         []Role         `gorm:"many2many:account_roles"`

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// rolesの中にnameがあるか。
func (a *Account) HasRole(name string) bool {
	for _, r := range a.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// tokenと同じ値のRefreshTokenを持っているか。
func (a *Account) OwnsToken(token string) bool {
	return a.FindRefreshToken(token) != nil
}

// tokenと同じ値のRefreshTokenを返す（なければnil）。
func (a *Account) FindRefreshToken(token string) *RefreshToken {
	for i := range a.RefreshTokens {
		if a.RefreshTokens[i].Token == token {
			return &a.RefreshTokens[i]
		}
	}
	return nil
}
