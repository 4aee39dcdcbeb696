package repository

import (
	"context"
	"errors"

	"northwind/internal/domain/model"
	domainrepo "northwind/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type employeePgxRepository struct {
	pool *pgxpool.Pool
}

// employeesは業務データ側のテーブルなのでGORMを通さず素のSQLで読む。
func NewEmployeePgxRepository(pool *pgxpool.Pool) domainrepo.EmployeeRepository {
	return &employeePgxRepository{pool: pool}
}

func (r *employeePgxRepository) FindByID(ctx context.Context, employeeID int64) (*model.Employee, error) {
	const q = `SELECT employee_id, first_name, last_name, country
	           FROM employees WHERE employee_id = $1`

	var e model.Employee
	err := r.pool.QueryRow(ctx, q, employeeID).
		Scan(&e.EmployeeID, &e.FirstName, &e.LastName, &e.Country)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainrepo.ErrEmployeeNotFound
		}
		return nil, err
	}

	return &e, nil
}

func (r *employeePgxRepository) Exists(ctx context.Context, employeeID int64) (bool, error) {
	const q = `SELECT COUNT(*) FROM employees WHERE employee_id = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, q, employeeID).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}
