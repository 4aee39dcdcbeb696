package model

// Employeeは業務データ側のemployeesテーブルの行。
// このサービスからは読み取り専用（マイグレーション対象外）。
type Employee struct {
	EmployeeID int64
	FirstName  string
	LastName   string
	Country    string
}
