package repository

import (
	"context"
	"errors"

	"northwind/internal/domain/model"
)

// アカウントが見つかりませんを統一
var ErrAccountNotFound = errors.New("account not found")

// アカウントの保存・取得を約束。
// 失敗はリトライせずそのまま上に返す。
type AccountRepository interface {
	// 新規アカウント作成（RefreshTokens・Rolesの関連も一緒に保存）
	Create(ctx context.Context, account *model.Account) error
	// usernameで1件取得（Roles/RefreshTokensをプリロード）
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	// emailで1件取得
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	// employee_idで1件取得（リンク済みチェック用）
	FindByEmployeeID(ctx context.Context, employeeID int64) (*model.Account, error)
	// refresh tokenの値から所有アカウントを1件取得
	FindByRefreshToken(ctx context.Context, token string) (*model.Account, error)
	// アカウント更新（所有するRefreshTokenの変更も保存）
	Update(ctx context.Context, account *model.Account) error
	// 既存トークンの失効を条件付きで確定する（revoked_at IS NULLの行だけ）。
	// 同じトークンへの同時ローテーションはどちらか一方しか成功しない。
	RevokeRefreshToken(ctx context.Context, token *model.RefreshToken) error
	// アカウント削除（RefreshTokensもまとめて消える）
	Delete(ctx context.Context, account *model.Account) error
	// 全アカウント取得（ページングなし）
	ListAll(ctx context.Context) ([]model.Account, error)
	// アカウント総数（初回登録のAdminブートストラップ判定用）
	CountAll(ctx context.Context) (int64, error)
	// アカウントにロールを割り当てる（既に持っていれば何もしない）
	AddRole(ctx context.Context, account *model.Account, role model.Role) error
}
