package usecase

import (
	"context"
	"errors"
	"time"

	"northwind/internal/domain/model"
	"northwind/internal/repository"
)

// ログイン失敗時のメッセージはemail間違いとパスワード間違いで
// 同じにする（どちらが違うか漏らさない）。
const (
	msgUserNotFound     = "User could not be found"
	msgAuthFailed       = "User could not be authenticated"
	msgUserExists       = "User already exists"
	msgEmployeeClaimed  = "User with requested EmployeeID already exists"
	msgEmployeeNotFound = "User already exists with requested EmployeeID"
	msgCreateFailed     = "User could not be created"
	msgUpdateFailed     = "Could not update user"
	msgUserDoesNotExist = "User does not exist"
	msgUnauthorized     = "Unauthorized"
	msgInvalidRequest   = "Invalid request"
)

// 登録トランザクション内の却下理由（soft failureメッセージに変換する）
var (
	errRegUserExists      = errors.New("register: user already exists")
	errRegEmployeeClaimed = errors.New("register: employee id already claimed")
)

// /api/userのリクエストボディ。
type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	EmployeeID int64  `json:"employee_id"`
}

type UpdateRequest struct {
	Username    string `json:"username"`
	Role        string `json:"role,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	OldPassword string `json:"old_password,omitempty"`
	NewPassword string `json:"new_password,omitempty"`
}

// soft failure（§失敗してもthrowしない系）はこの形で返す。
type AuthenticateResponse struct {
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	JwtToken     string `json:"jwt_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type AccountResponse struct {
	Username     string     `json:"username,omitempty"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Created      time.Time  `json:"created,omitempty"`
	Updated      *time.Time `json:"updated,omitempty"`
	Success      bool       `json:"success"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(username string, roles []string, country string) (string, error)
}

// usecaseがValidatorInterfaceに依存する約束
type AccountValidator interface {
	ValidateAuthenticate(ctx context.Context, email string, password string) error
	ValidateRegister(ctx context.Context, req RegisterRequest) error
}

// AccountUsecaseは認証エンジン本体。
// ログイン・登録・更新・削除・一覧・fingerprint検証を担当する。
type AccountUsecase struct {
	accounts  repository.AccountRepository
	roles     repository.RoleRepository
	employees repository.EmployeeRepository
	tx        repository.TransactionManager
	issuer    AccessTokenIssuer
	hasher    PasswordHasher
	verifier  PasswordVerifier
	validator AccountValidator
	clock     Clock
}

func NewAccountUsecase(
	accounts repository.AccountRepository,
	roles repository.RoleRepository,
	employees repository.EmployeeRepository,
	tx repository.TransactionManager,
	issuer AccessTokenIssuer,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	validator AccountValidator,
	clock Clock,
) *AccountUsecase {
	return &AccountUsecase{
		accounts:  accounts,
		roles:     roles,
		employees: employees,
		tx:        tx,
		issuer:    issuer,
		hasher:    hasher,
		verifier:  verifier,
		validator: validator,
		clock:     clock,
	}
}

// Authenticate はログイン。失敗はすべてsoft failure（throwしない）。
func (u *AccountUsecase) Authenticate(ctx context.Context, req AuthenticateRequest) AuthenticateResponse {
	if err := u.validator.ValidateAuthenticate(ctx, req.Email, req.Password); err != nil {
		return AuthenticateResponse{Success: false, ErrorMessage: msgInvalidRequest}
	}

	account, err := u.accounts.FindByEmail(ctx, req.Email)
	if err != nil || account == nil {
		return AuthenticateResponse{Success: false, ErrorMessage: msgUserNotFound}
	}

	if !u.verifier.Verify(req.Password, account.PasswordHash) {
		return AuthenticateResponse{Success: false, ErrorMessage: msgUserNotFound}
	}

	jwtToken, err := u.issueAccessToken(ctx, account)
	if err != nil {
		return AuthenticateResponse{Success: false, ErrorMessage: msgAuthFailed}
	}

	// refresh tokenを発行してアカウントに追加、JWTはfingerprintとして保存
	now := u.clock.Now().UTC()
	refreshToken := newRefreshToken(now)
	account.RefreshTokens = append(account.RefreshTokens, refreshToken)
	account.CurrentToken = jwtToken

	// 更新失敗もsoft failure（refresh/revoke側と違いthrowしない）
	if err := u.accounts.Update(ctx, account); err != nil {
		return AuthenticateResponse{Success: false, ErrorMessage: msgAuthFailed}
	}

	return AuthenticateResponse{
		Username:     account.Username,
		Email:        account.Email,
		JwtToken:     jwtToken,
		RefreshToken: refreshToken.Token,
		Success:      true,
	}
}

// RegisterEmployee は一般登録。最初の1人だけAdminも付く（bootstrap）。
func (u *AccountUsecase) RegisterEmployee(ctx context.Context, req RegisterRequest) AccountResponse {
	if err := u.validator.ValidateRegister(ctx, req); err != nil {
		return AccountResponse{Success: false, ErrorMessage: msgInvalidRequest}
	}

	// 外部のemployeesテーブルに行がなければ登録させない
	exists, err := u.employees.Exists(ctx, req.EmployeeID)
	if err != nil {
		return AccountResponse{Success: false, ErrorMessage: msgCreateFailed}
	}
	if !exists {
		return AccountResponse{Success: false, ErrorMessage: msgEmployeeNotFound}
	}

	var account *model.Account

	// 件数チェック→作成を1トランザクションに入れて
	// 「同時に2人とも最初のユーザー」になるのを防ぐ
	txErr := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		taken, err := u.registrationTaken(ctx, r.Accounts(), req)
		if err != nil {
			return err
		}
		if taken {
			return errRegUserExists
		}

		count, err := r.Accounts().CountAll(ctx)
		if err != nil {
			return err
		}

		roleNames := []string{model.RoleEmployee}
		if count == 0 {
			roleNames = append(roleNames, model.RoleAdmin)
		}

		account, err = u.createAccount(ctx, r, req, roleNames)
		return err
	})

	if txErr != nil {
		if errors.Is(txErr, errRegUserExists) {
			return AccountResponse{Success: false, ErrorMessage: msgUserExists}
		}
		return AccountResponse{Success: false, ErrorMessage: msgCreateFailed}
	}

	return toAccountResponse(account)
}

// RegisterAdmin は管理者登録。Employee+Adminの両方を付ける。
func (u *AccountUsecase) RegisterAdmin(ctx context.Context, req RegisterRequest) AccountResponse {
	if err := u.validator.ValidateRegister(ctx, req); err != nil {
		return AccountResponse{Success: false, ErrorMessage: msgInvalidRequest}
	}

	exists, err := u.employees.Exists(ctx, req.EmployeeID)
	if err != nil {
		return AccountResponse{Success: false, ErrorMessage: msgCreateFailed}
	}
	if !exists {
		return AccountResponse{Success: false, ErrorMessage: msgEmployeeNotFound}
	}

	var account *model.Account

	txErr := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if existing, err := findOrNil(ctx, r.Accounts().FindByUsername, req.Username); err != nil {
			return err
		} else if existing != nil {
			return errRegUserExists
		}

		if claimed, err := findOrNilID(ctx, r.Accounts().FindByEmployeeID, req.EmployeeID); err != nil {
			return err
		} else if claimed != nil {
			return errRegEmployeeClaimed
		}

		account, err = u.createAccount(ctx, r, req, []string{model.RoleEmployee, model.RoleAdmin})
		return err
	})

	if txErr != nil {
		switch {
		case errors.Is(txErr, errRegUserExists):
			return AccountResponse{Success: false, ErrorMessage: msgUserExists}
		case errors.Is(txErr, errRegEmployeeClaimed):
			return AccountResponse{Success: false, ErrorMessage: msgEmployeeClaimed}
		}
		return AccountResponse{Success: false, ErrorMessage: msgCreateFailed}
	}

	return toAccountResponse(account)
}

// UpdateUser は自分自身かAdminだけが更新できる。
// 入っているフィールドだけ上書きする（空は触らない）。
func (u *AccountUsecase) UpdateUser(ctx context.Context, req UpdateRequest, caller CallerIdentity) AccountResponse {
	account, err := u.accounts.FindByUsername(ctx, req.Username)
	if err != nil || account == nil {
		return AccountResponse{Success: false, ErrorMessage: msgUserDoesNotExist}
	}

	isAdmin := caller.HasRole(model.RoleAdmin)

	if caller.Username != account.Username && !isAdmin {
		return AccountResponse{Success: false, ErrorMessage: msgUnauthorized}
	}

	// Role変更はAdmin限定
	if req.Role != "" && !isAdmin {
		return AccountResponse{Success: false, ErrorMessage: msgUnauthorized}
	}

	// パスワード変更は旧パスワード照合が通らないと全体が失敗
	if req.OldPassword != "" && req.NewPassword != "" {
		if !u.verifier.Verify(req.OldPassword, account.PasswordHash) {
			return AccountResponse{Success: false, ErrorMessage: msgUpdateFailed}
		}
		hashed, err := u.hasher.Hash(req.NewPassword)
		if err != nil {
			return AccountResponse{Success: false, ErrorMessage: msgUpdateFailed}
		}
		account.PasswordHash = hashed
	}

	// merge: 空でないフィールドだけ反映
	if req.Email != "" {
		account.Email = req.Email
	}
	if req.Phone != "" {
		account.Phone = req.Phone
	}

	// CountryManager/VDは初回参照時に作って割り当てる
	if req.Role == model.RoleCountryManager || req.Role == model.RoleVD {
		if err := u.grantRole(ctx, account, req.Role); err != nil {
			return AccountResponse{Success: false, ErrorMessage: msgUpdateFailed}
		}
	}

	now := u.clock.Now().UTC()
	account.UpdatedAt = &now

	if err := u.accounts.Update(ctx, account); err != nil {
		return AccountResponse{Success: false, ErrorMessage: msgUpdateFailed}
	}

	return toAccountResponse(account)
}

// DeleteUser は (false, nil)=見つからない / (false, err)=削除失敗 を区別して返す。
func (u *AccountUsecase) DeleteUser(ctx context.Context, username string) (bool, error) {
	account, err := u.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := u.accounts.Delete(ctx, account); err != nil {
		return false, err
	}

	return true, nil
}

// ListAllUsers は全アカウントをそのまま返す（ページングなし）。
func (u *AccountUsecase) ListAllUsers(ctx context.Context) ([]AccountResponse, error) {
	accounts, err := u.accounts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountResponse(&accounts[i]))
	}
	return out, nil
}

// VerifyToken はfingerprintチェック。
// 提示されたヘッダ値が "Bearer " + 保存中のトークンと一致するかだけを見る。
// （署名検証はmiddleware側。こちらはサーバー側強制ログアウトのための関門。）
func (u *AccountUsecase) VerifyToken(ctx context.Context, username string, presented string) bool {
	account, err := u.accounts.FindByUsername(ctx, username)
	if err != nil || account == nil {
		return false
	}
	if account.CurrentToken == "" {
		return false
	}
	return presented == "Bearer "+account.CurrentToken
}

// ---- helpers ----

// ロール名を集めて、紐づくemployeeの国をcountryクレームにしてJWTを発行
func (u *AccountUsecase) issueAccessToken(ctx context.Context, account *model.Account) (string, error) {
	roles := make([]string, 0, len(account.Roles))
	for _, r := range account.Roles {
		roles = append(roles, r.Name)
	}

	country := ""
	if account.EmployeeID != 0 {
		employee, err := u.employees.FindByID(ctx, account.EmployeeID)
		if err == nil && employee != nil {
			country = employee.Country
		}
	}

	return u.issuer.Issue(account.Username, roles, country)
}

func (u *AccountUsecase) registrationTaken(ctx context.Context, accounts repository.AccountRepository, req RegisterRequest) (bool, error) {
	existing, err := findOrNil(ctx, accounts.FindByUsername, req.Username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return true, nil
	}

	claimed, err := findOrNilID(ctx, accounts.FindByEmployeeID, req.EmployeeID)
	if err != nil {
		return false, err
	}
	return claimed != nil, nil
}

func (u *AccountUsecase) createAccount(ctx context.Context, r repository.TxRepos, req RegisterRequest, roleNames []string) (*model.Account, error) {
	hashed, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	roles := make([]model.Role, 0, len(roleNames))
	for _, name := range roleNames {
		role, err := r.Roles().EnsureRole(ctx, name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	account := &model.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		EmployeeID:   req.EmployeeID,
		Roles:        roles,
		CreatedAt:    u.clock.Now().UTC(),
	}

	if err := r.Accounts().Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (u *AccountUsecase) grantRole(ctx context.Context, account *model.Account, name string) error {
	role, err := u.roles.EnsureRole(ctx, name)
	if err != nil {
		return err
	}
	return u.accounts.AddRole(ctx, account, role)
}

func toAccountResponse(a *model.Account) AccountResponse {
	return AccountResponse{
		Username: a.Username,
		Email:    a.Email,
		Phone:    a.Phone,
		Created:  a.CreatedAt,
		Updated:  a.UpdatedAt,
		Success:  true,
	}
}

// ErrAccountNotFoundはnilに寄せる（存在チェック用）
func findOrNil(ctx context.Context, find func(context.Context, string) (*model.Account, error), key string) (*model.Account, error) {
	a, err := find(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func findOrNilID(ctx context.Context, find func(context.Context, int64) (*model.Account, error), key int64) (*model.Account, error) {
	a, err := find(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}
