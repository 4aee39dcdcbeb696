package repository

import (
	"context"

	"northwind/internal/domain/model"
	domainrepo "northwind/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `order_id, customer_id, employee_id, order_date,
	shipped_date, ship_name, ship_city, ship_country`

type orderPgxRepository struct {
	pool *pgxpool.Pool
}

// ordersも読み取り専用の業務データ。
func NewOrderPgxRepository(pool *pgxpool.Pool) domainrepo.OrderRepository {
	return &orderPgxRepository{pool: pool}
}

func (r *orderPgxRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY order_id`)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *orderPgxRepository) ListByShipCountry(ctx context.Context, country string) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE ship_country = $1 ORDER BY order_id`, country)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *orderPgxRepository) ListByEmployeeID(ctx context.Context, employeeID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE employee_id = $1 ORDER BY order_id`, employeeID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.OrderID, &o.CustomerID, &o.EmployeeID, &o.OrderDate,
			&o.ShippedDate, &o.ShipName, &o.ShipCity, &o.ShipCountry,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
