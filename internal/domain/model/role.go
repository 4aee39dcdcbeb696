package model

// 固定ロール名。ここにない名前も必要になった時点で作られる。
const (
	RoleAdmin          = "Admin"
	RoleEmployee       = "Employee"
	RoleCountryManager = "CountryManager"
	RoleVD             = "VD"
)

// Roleはアカウントに割り当てるロール。初参照時に遅延作成される。
type Role struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"uniqueIndex;not null"`
}
