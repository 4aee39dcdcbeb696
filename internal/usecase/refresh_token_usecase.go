package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"northwind/internal/domain/model"
	"northwind/internal/repository"
)

// refreshtokenの有効期限
const RefreshTokenTTL = 30 * 24 * time.Hour

// hard failure（soft failureにせずhandlerまで投げる）
var (
	// トークンが存在しない・期限切れ・失効済み・ローテーション済み
	ErrInvalidToken = errors.New("invalid token")
	// 保存に失敗（リトライ不可、リクエストごと失敗させる）
	ErrTokenOperationFailed = errors.New("token operation failed")
)

// RefreshTokenUsecaseはローテーションと失効を担当する。
// ログイン系と違い、失敗はエラーとして上に投げる。
type RefreshTokenUsecase struct {
	accounts  repository.AccountRepository
	employees repository.EmployeeRepository
	issuer    AccessTokenIssuer
	clock     Clock
}

func NewRefreshTokenUsecase(
	accounts repository.AccountRepository,
	employees repository.EmployeeRepository,
	issuer AccessTokenIssuer,
	clock Clock,
) *RefreshTokenUsecase {
	return &RefreshTokenUsecase{
		accounts:  accounts,
		employees: employees,
		issuer:    issuer,
		clock:     clock,
	}
}

// Rotate は古いトークンを失効させ、新しいrefresh tokenとJWTを発行する。
// 一度ローテーションしたトークンは二度と使えない（リプレイ防止）。
func (u *RefreshTokenUsecase) Rotate(ctx context.Context, oldToken string) (AuthenticateResponse, error) {
	account, refreshToken, err := u.findActiveToken(ctx, oldToken)
	if err != nil {
		return AuthenticateResponse{}, err
	}

	now := u.clock.Now().UTC()
	newToken := newRefreshToken(now)

	refreshToken.RevokedAt = &now
	refreshToken.ReplacedByToken = newToken.Token

	// 条件付き更新：同じトークンを同時にローテーションした場合、
	// revoked_atを先に入れられた側だけが勝つ
	if err := u.accounts.RevokeRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return AuthenticateResponse{}, ErrInvalidToken
		}
		return AuthenticateResponse{}, ErrTokenOperationFailed
	}

	account.RefreshTokens = append(account.RefreshTokens, newToken)

	// 新しいJWTを発行してfingerprintも差し替える
	jwtToken, err := u.issueAccessToken(ctx, account)
	if err != nil {
		return AuthenticateResponse{}, ErrTokenOperationFailed
	}
	account.CurrentToken = jwtToken

	if err := u.accounts.Update(ctx, account); err != nil {
		return AuthenticateResponse{}, ErrTokenOperationFailed
	}

	return AuthenticateResponse{
		Username:     account.Username,
		Email:        account.Email,
		JwtToken:     jwtToken,
		RefreshToken: newToken.Token,
		Success:      true,
	}, nil
}

// Revoke はトークンを失効させるだけ（置き換えなし）。
// 既に失効済みならErrInvalidToken（静かに2回成功はしない）。
func (u *RefreshTokenUsecase) Revoke(ctx context.Context, token string) error {
	_, refreshToken, err := u.findActiveToken(ctx, token)
	if err != nil {
		return err
	}

	now := u.clock.Now().UTC()
	refreshToken.RevokedAt = &now

	if err := u.accounts.RevokeRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrInvalidToken
		}
		return ErrTokenOperationFailed
	}

	return nil
}

// トークンの所有アカウントを探し、activeでなければErrInvalidToken。
func (u *RefreshTokenUsecase) findActiveToken(ctx context.Context, token string) (*model.Account, *model.RefreshToken, error) {
	account, err := u.accounts.FindByRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}

	refreshToken := account.FindRefreshToken(token)
	if refreshToken == nil {
		return nil, nil, ErrInvalidToken
	}

	if !refreshToken.IsActive(u.clock.Now().UTC()) {
		return nil, nil, ErrInvalidToken
	}

	return account, refreshToken, nil
}

func (u *RefreshTokenUsecase) issueAccessToken(ctx context.Context, account *model.Account) (string, error) {
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

// 40バイトの乱数を大文字hex（80文字）にしたトークンを作る。
func newRefreshToken(now time.Time) model.RefreshToken {
	return model.RefreshToken{
		Token:     randomTokenString(),
		CreatedAt: now,
		ExpiresAt: now.Add(RefreshTokenTTL),
	}
}

func randomTokenString() string {
	b := make([]byte, 40)
	if _, err := rand.Read(b); err != nil {
		// crypto/randが読めない環境では安全なトークンを作れない
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(b))
}
