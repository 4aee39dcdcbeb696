package repository

import (
	"context"
	"errors"

	"northwind/internal/domain/model"
	domainrepo "northwind/internal/repository"

	"gorm.io/gorm"
)

type accountGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewAccountGormRepository(db *gorm.DB) domainrepo.AccountRepository {
	return &accountGormRepository{db: db}
}

// Create はアカウントを関連ごと新規作成
func (r *accountGormRepository) Create(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return err
	}
	return nil
}

// usernameでアカウントを1件取得
func (r *accountGormRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.findOne(ctx, "username = ?", username)
}

// emailでアカウントを1件取得
func (r *accountGormRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, "email = ?", email)
}

// employee_idでアカウントを1件取得
func (r *accountGormRepository) FindByEmployeeID(ctx context.Context, employeeID int64) (*model.Account, error) {
	return r.findOne(ctx, "employee_id = ?", employeeID)
}

// refresh tokenの値から所有アカウントを1件取得
func (r *accountGormRepository) FindByRefreshToken(ctx context.Context, token string) (*model.Account, error) {
	var rt model.RefreshToken

	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&rt).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrAccountNotFound
		}
		return nil, err
	}

	return r.findOne(ctx, "id = ?", rt.AccountID)
}

// アカウントを更新。RefreshTokenの変更（追加・失効）も一緒に保存する。
func (r *accountGormRepository) Update(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Session(&gorm.Session{FullSaveAssociations: true}).
			Save(account).Error; err != nil {
			return err
		}
		return nil
	})
}

// 失効を条件付きで確定する。revoked_atが既に入っている行は更新されず、
// その場合はErrAccountNotFoundを返す（同時ローテーションの負け側）。
func (r *accountGormRepository) RevokeRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("token = ? AND revoked_at IS NULL", token.Token).
		Updates(map[string]interface{}{
			"revoked_at":        token.RevokedAt,
			"replaced_by_token": token.ReplacedByToken,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainrepo.ErrAccountNotFound
	}
	return nil
}

// アカウント削除。RefreshTokensとロール割り当ても消える。
func (r *accountGormRepository) Delete(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", account.ID).
			Delete(&model.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Model(account).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(account).Error
	})
}

// 全アカウント取得
func (r *accountGormRepository) ListAll(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account

	err := r.db.WithContext(ctx).
		Preload("Roles").
		Order("id").
		Find(&accounts).Error

	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// アカウント総数
func (r *accountGormRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ロールを割り当てる（重複は無視）
func (r *accountGormRepository) AddRole(ctx context.Context, account *model.Account, role model.Role) error {
	if account.HasRole(role.Name) {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(account).
		Association("Roles").
		Append(&role); err != nil {
		return err
	}
	return nil
}

func (r *accountGormRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Account, error) {
	var a model.Account

	err := r.db.WithContext(ctx).
		Preload("Roles").
		Preload("RefreshTokens", func(db *gorm.DB) *gorm.DB {
			return db.Order("refresh_tokens.created_at")
		}).
		Where(query, arg).
		First(&a).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrAccountNotFound
		}
		return nil, err
	}

	return &a, nil
}
