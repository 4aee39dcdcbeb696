package repository

import (
	"context"

	"northwind/internal/domain/model"
)

// 外部の業務データ（orders）への読み取り専用アクセス。
type OrderRepository interface {
	// 全注文
	ListAll(ctx context.Context) ([]model.Order, error)
	// ship_countryで絞り込み
	ListByShipCountry(ctx context.Context, country string) ([]model.Order, error)
	// 担当employee_idで絞り込み
	ListByEmployeeID(ctx context.Context, employeeID int64) ([]model.Order, error)
}
