package model

import "time"

// Orderは業務データ側のordersテーブルの行。読み取り専用。
type Order struct {
	OrderID     int64      `json:"order_id"`
	CustomerID  string     `json:"customer_id"`
	EmployeeID  int64      `json:"employee_id"`
	OrderDate   time.Time  `json:"order_date"`
	ShippedDate *time.Time `json:"shipped_date"`
	ShipName    string     `json:"ship_name"`
	ShipCity    string     `json:"ship_city"`
	ShipCountry string     `json:"ship_country"`
}
