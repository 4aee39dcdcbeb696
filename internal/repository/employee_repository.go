package repository

import (
	"context"
	"errors"

	"northwind/internal/domain/model"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// 外部の業務データ（employees）への読み取り専用アクセス。
type EmployeeRepository interface {
	// employee_idで1件取得
	FindByID(ctx context.Context, employeeID int64) (*model.Employee, error)
	// employee_idの行が存在するか（登録時の参照チェック用）
	Exists(ctx context.Context, employeeID int64) (bool, error)
}
