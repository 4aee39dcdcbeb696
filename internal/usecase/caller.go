package usecase

import "time"

// CallerIdentityは検証済みトークンから組み立てた呼び出し元。
// middleware/handlerが作って明示的に渡す（contextから暗黙に読まない）。
type CallerIdentity struct {
	Username string
	Roles    []string
	Country  string
}

func (c CallerIdentity) HasRole(name string) bool {
	for _, r := range c.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// 現在の時間
type Clock interface {
	Now() time.Time
}
