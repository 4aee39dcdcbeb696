package usecase

import (
	"context"
	"testing"
	"time"

	"northwind/internal/domain/model"
	repo "northwind/internal/repository"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Mock: AccountRepository
// =====================

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	args := m.Called(ctx, username)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	args := m.Called(ctx, email)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *MockAccountRepository) FindByEmployeeID(ctx context.Context, employeeID int64) (*model.Account, error) {
	args := m.Called(ctx, employeeID)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *MockAccountRepository) FindByRefreshToken(ctx context.Context, token string) (*model.Account, error) {
	args := m.Called(ctx, token)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) RevokeRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) ListAll(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Account)
	return list, args.Error(1)
}

func (m *MockAccountRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *MockAccountRepository) AddRole(ctx context.Context, account *model.Account, role model.Role) error {
	args := m.Called(ctx, account, role)
	return args.Error(0)
}

// =====================
// Mock: RoleRepository
// =====================

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) EnsureRole(ctx context.Context, name string) (model.Role, error) {
	args := m.Called(ctx, name)
	r, _ := args.Get(0).(model.Role)
	return r, args.Error(1)
}

// =====================
// Mock: EmployeeRepository
// =====================

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, employeeID int64) (*model.Employee, error) {
	args := m.Called(ctx, employeeID)
	e, _ := args.Get(0).(*model.Employee)
	return e, args.Error(1)
}

func (m *MockEmployeeRepository) Exists(ctx context.Context, employeeID int64) (bool, error) {
	args := m.Called(ctx, employeeID)
	return args.Bool(0), args.Error(1)
}

// =====================
// Mock: OrderRepository
// =====================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Error(1)
}

func (m *MockOrderRepository) ListByShipCountry(ctx context.Context, country string) ([]model.Order, error) {
	args := m.Called(ctx, country)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Error(1)
}

func (m *MockOrderRepository) ListByEmployeeID(ctx context.Context, employeeID int64) ([]model.Order, error) {
	args := m.Called(ctx, employeeID)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Error(1)
}

// =====================
// TxManager / TxRepos stubs
// =====================

// txReposStub は WithinTx の中で渡す repos を固定して unit テストを回す
type txReposStub struct {
	accounts repo.AccountRepository
	roles    repo.RoleRepository
}

func (r *txReposStub) Accounts() repo.AccountRepository { return r.accounts }
func (r *txReposStub) Roles() repo.RoleRepository       { return r.roles }

// txManagerStub はトランザクションを張らずfnをそのまま実行する
type txManagerStub struct {
	repos repo.TxRepos
}

func (m *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

// =====================
// Issuer / Clock / Validator stubs
// =====================

type issuerStub struct {
	token string
	err   error

	// 最後にIssueへ渡された値（クレームの中身を検証する用）
	lastUsername string
	lastRoles    []string
	lastCountry  string
}

func (s *issuerStub) Issue(username string, roles []string, country string) (string, error) {
	s.lastUsername = username
	s.lastRoles = roles
	s.lastCountry = country
	return s.token, s.err
}

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

// validatorStub は常に同じ結果を返す（バリデーション自体はvalidatorパッケージ側で試験する）
type validatorStub struct {
	authErr     error
	registerErr error
}

func (v *validatorStub) ValidateAuthenticate(ctx context.Context, email string, password string) error {
	return v.authErr
}

func (v *validatorStub) ValidateRegister(ctx context.Context, req RegisterRequest) error {
	return v.registerErr
}

// =====================
// helpers
// =====================

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func testNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newTestAccountUsecase(
	accounts *MockAccountRepository,
	roles *MockRoleRepository,
	employees *MockEmployeeRepository,
) *AccountUsecase {
	return NewAccountUsecase(
		accounts,
		roles,
		employees,
		&txManagerStub{repos: &txReposStub{accounts: accounts, roles: roles}},
		&issuerStub{token: "signed.jwt.token"},
		NewBcryptPasswordHasher(bcrypt.MinCost),
		NewBcryptPasswordVerifier(),
		&validatorStub{},
		&fixedClock{t: testNow()},
	)
}
