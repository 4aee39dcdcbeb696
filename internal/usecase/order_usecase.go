package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"northwind/internal/domain/model"
	"northwind/internal/repository"
)

type OrderOutput struct {
	OrderID     int64      `json:"order_id"`
	CustomerID  string     `json:"customer_id"`
	EmployeeID  int64      `json:"employee_id"`
	OrderDate   time.Time  `json:"order_date"`
	ShippedDate *time.Time `json:"shipped_date,omitempty"`
	ShipName    string     `json:"ship_name"`
	ShipCity    string     `json:"ship_city"`
	ShipCountry string     `json:"ship_country"`
}

// OrderUsecaseはロールに応じて見える注文を絞り込む。
// fingerprint/JWTの検証はmiddlewareで済んでいる前提。
type OrderUsecase struct {
	orders    repository.OrderRepository
	employees repository.EmployeeRepository
	accounts  repository.AccountRepository
}

func NewOrderUsecase(
	orders repository.OrderRepository,
	employees repository.EmployeeRepository,
	accounts repository.AccountRepository,
) *OrderUsecase {
	return &OrderUsecase{
		orders:    orders,
		employees: employees,
		accounts:  accounts,
	}
}

// ListAllOrders は全注文。ただしCountryManagerは
// 自分のemployeeの国の注文しか見えない（最優先ルール）。
func (u *OrderUsecase) ListAllOrders(ctx context.Context, caller CallerIdentity) ([]OrderOutput, error) {
	if caller.HasRole(model.RoleCountryManager) {
		return u.listForManagerCountry(ctx, caller)
	}

	orders, err := u.orders.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutputs(orders), nil
}

// ListOrdersByCountry はトークンのcountryクレームで絞り込む。
// CountryManagerはここでもemployeeの国が優先される。
func (u *OrderUsecase) ListOrdersByCountry(ctx context.Context, caller CallerIdentity) ([]OrderOutput, error) {
	if caller.HasRole(model.RoleCountryManager) {
		return u.listForManagerCountry(ctx, caller)
	}

	orders, err := u.orders.ListByShipCountry(ctx, caller.Country)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutputs(orders), nil
}

// ListMyOrders は自分の担当注文。Admin/VDだけは任意のemployee_idを指定できる。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, caller CallerIdentity, requestedEmployeeID int64) ([]OrderOutput, error) {
	employeeID := requestedEmployeeID

	if !caller.HasRole(model.RoleAdmin) && !caller.HasRole(model.RoleVD) {
		account, err := u.accounts.FindByUsername(ctx, caller.Username)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return nil, NewHTTPError(http.StatusNotFound, "not found")
			}
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		employeeID = account.EmployeeID
	}

	orders, err := u.orders.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutputs(orders), nil
}

// CountryManagerのemployeeの国で絞り込む
func (u *OrderUsecase) listForManagerCountry(ctx context.Context, caller CallerIdentity) ([]OrderOutput, error) {
	account, err := u.accounts.FindByUsername(ctx, caller.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	employee, err := u.employees.FindByID(ctx, account.EmployeeID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	orders, err := u.orders.ListByShipCountry(ctx, employee.Country)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutputs(orders), nil
}

func toOrderOutputs(orders []model.Order) []OrderOutput {
	out := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderOutput{
			OrderID:     o.OrderID,
			CustomerID:  o.CustomerID,
			EmployeeID:  o.EmployeeID,
			OrderDate:   o.OrderDate,
			ShippedDate: o.ShippedDate,
			ShipName:    o.ShipName,
			ShipCity:    o.ShipCity,
			ShipCountry: o.ShipCountry,
		})
	}
	return out
}
