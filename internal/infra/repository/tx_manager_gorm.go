package repository

import (
	"context"

	repo "northwind/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	accounts repo.AccountRepository
	roles    repo.RoleRepository
}

func (r *txReposGorm) Accounts() repo.AccountRepository { return r.accounts }
func (r *txReposGorm) Roles() repo.RoleRepository       { return r.roles }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			accounts: NewAccountGormRepository(tx),
			roles:    NewRoleGormRepository(tx),
		}
		return fn(r)
	})
}
