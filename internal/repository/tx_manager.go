package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Accounts() AccountRepository
	Roles() RoleRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// 登録フローの「件数チェック→作成」を1トランザクションにするために使う。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
