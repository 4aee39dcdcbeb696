package repository

import (
	"context"

	"northwind/internal/domain/model"
)

// ロールの遅延作成を約束。
type RoleRepository interface {
	// nameのロールを返す。なければ作る（冪等）。
	EnsureRole(ctx context.Context, name string) (model.Role, error)
}
