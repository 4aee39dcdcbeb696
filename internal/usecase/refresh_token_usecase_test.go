package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"northwind/internal/domain/model"
	"northwind/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestRefreshTokenUsecase(
	accounts *MockAccountRepository,
	employees *MockEmployeeRepository,
	issuer *issuerStub,
) *RefreshTokenUsecase {
	return NewRefreshTokenUsecase(accounts, employees, issuer, &fixedClock{t: testNow()})
}

// activeなrefresh tokenを1本持つアカウント
func accountWithToken(token string) *model.Account {
	return &model.Account{
		ID:       1,
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    []model.Role{{ID: 1, Name: model.RoleEmployee}},
		RefreshTokens: []model.RefreshToken{
			{
				ID:        10,
				AccountID: 1,
				Token:     token,
				CreatedAt: testNow().Add(-time.Hour),
				ExpiresAt: testNow().Add(RefreshTokenTTL),
			},
		},
	}
}

// =====================
// Rotate
// =====================

func TestRotate_Success(t *testing.T) {
	accounts := new(MockAccountRepository)
	employees := new(MockEmployeeRepository)
	issuer := &issuerStub{token: "rotated.jwt"}
	u := newTestRefreshTokenUsecase(accounts, employees, issuer)

	stored := accountWithToken("OLDTOKEN")
	accounts.On("FindByRefreshToken", mock.Anything, "OLDTOKEN").Return(stored, nil)

	var revoked *model.RefreshToken
	accounts.On("RevokeRefreshToken", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { revoked = args.Get(1).(*model.RefreshToken) }).
		Return(nil)

	var saved *model.Account
	accounts.On("Update", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*model.Account) }).
		Return(nil)

	res, err := u.Rotate(context.Background(), "OLDTOKEN")
	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "rotated.jwt", res.JwtToken)
	assert.Regexp(t, refreshTokenPattern, res.RefreshToken)
	assert.NotEqual(t, "OLDTOKEN", res.RefreshToken)

	// 古いトークンは失効し、後継トークンを記録する（チェーン）
	assert.NotNil(t, revoked)
	assert.Equal(t, "OLDTOKEN", revoked.Token)
	assert.NotNil(t, revoked.RevokedAt)
	assert.Equal(t, testNow(), *revoked.RevokedAt)
	assert.Equal(t, res.RefreshToken, revoked.ReplacedByToken)

	// 新トークンが追加され、fingerprintも新しいJWTに差し替わる
	assert.Len(t, saved.RefreshTokens, 2)
	assert.Equal(t, res.RefreshToken, saved.RefreshTokens[1].Token)
	assert.Equal(t, testNow().Add(RefreshTokenTTL), saved.RefreshTokens[1].ExpiresAt)
	assert.Equal(t, "rotated.jwt", saved.CurrentToken)
}

func TestRotate_ReplayedTokenRejected(t *testing.T) {
	accounts := new(MockAccountRepository)
	u := newTestRefreshTokenUsecase(accounts, new(MockEmployeeRepository), &issuerStub{})

	// 既にローテーション済み（revoked_atあり）のトークン
	stored := accountWithToken("USEDTOKEN")
	revokedAt := testNow().Add(-time.Minute)
	stored.RefreshTokens[0].RevokedAt = &revokedAt
	stored.RefreshTokens[0].ReplacedByToken = "NEWERTOKEN"

	accounts.On("FindByRefreshToken", mock.Anything, "USEDTOKEN").Return(stored, nil)

	_, err := u.Rotate(context.Background(), "USEDTOKEN")
	assert.ErrorIs(t, err, ErrInvalidToken)
	accounts.AssertNotCalled(t, "RevokeRefreshToken", mock.Anything, mock.Anything)
	accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRotate_ExpiredAtBoundary(t *testing.T) {
	accounts := new(MockAccountRepository)
	u := newTestRefreshTokenUsecase(accounts, new(MockEmployeeRepository), &issuerStub{})

	// 期限ちょうど（now == expires）も無効
	stored := accountWithToken("EDGETOKEN")
	stored.RefreshTokens[0].ExpiresAt = testNow()

	accounts.On("FindByRefreshToken", mock.Anything, "EDGETOKEN").Return(stored, nil)

	_, err := u.Rotate(context.Background(), "EDGETOKEN")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotate_UnknownToken(t *testing.T) {
	accounts := new(MockAccountRepository)
	u := newTestRefreshTokenUsecase(accounts, new(MockEmployeeRepository), &issuerStub{})

	accounts.On("FindByRefreshToken", mock.Anything, "NOSUCHTOKEN").
		Return(nil, repository.ErrAccountNotFound)

	_, err := u.Rotate(context.Background(), "NOSUCHTOKEN")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotate_LostRace(t *testing.T) {
	accounts := new(MockAccountRepository)
	u := newTestRefreshTokenUsecase(accounts, new(MockEmployeeRepository), &issuerStub{})

	stored := accountWithToken("RACETOKEN")
	accounts.On("FindByRefreshToken", mock.Anything, "RACETOKEN").Return(stored, nil)
	// 条件付き更新が0行＝先に別リクエストが失効させた
	accounts.On("RevokeRefreshToken", mock.Anything, mock.Anything).
		Return(repository.ErrAccountNotFound)

	_, err := u.Rotate(context.Background(), "RACETOKEN")
	assert.ErrorIs(t, err, ErrInvalidToken)
	accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRotate_UpdateFailure(t *testing.T) {
	accounts := new(MockAccountRepository)
	u := newTestRefreshTokenUsecase(accounts, new(MockEmployeeRepository), &issuerStub{token: "jwt"})

	stored := accountWithToken("OLDTOKEN")
	accounts.On("FindByRefreshToken", mock.Anything, "OLDTOKEN").Return(stored, nil)
	accounts.On("RevokeRefreshToken", mock.Anything, mock.Anything).Return(nil)
	accounts.On("Update", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := u.Rotate(context.Background(), "OLDTOKEN")
	assert.ErrorIs(t, err, ErrTokenOperationFailed)
}

// =====================
// Revoke
// =====================

func TestRevoke_Success(t *testing.T) {
	accounts := new(MockAccountRepository)
	u := newTestRefreshTokenUsecase(accounts, new(MockEmployeeRepository), &issuerStub{})

	stored := accountWithToken("LOGOUTTOKEN")
	accounts.On("FindByRefreshToken", mock.Anything, "LOGOUTTOKEN").Return(stored, nil)

	var revoked *model.RefreshToken
	accounts.On("RevokeRefreshToken", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { revoked = args.Get(1).(*model.RefreshToken) }).
		Return(nil)

	err := u.Revoke(context.Background(), "LOGOUTTOKEN")
	assert.NoError(t, err)

	// 失効だけで後継トークンは作らない
	assert.NotNil(t, revoked.RevokedAt)
	assert.Empty(t, revoked.ReplacedByToken)
	accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRevoke_AlreadyRevoked(t *testing.T) {
	accounts := new(MockAccountRepository)
	u := newTestRefreshTokenUsecase(accounts, new(MockEmployeeRepository), &issuerStub{})

	stored := accountWithToken("LOGOUTTOKEN")
	revokedAt := testNow().Add(-time.Minute)
	stored.RefreshTokens[0].RevokedAt = &revokedAt

	accounts.On("FindByRefreshToken", mock.Anything, "LOGOUTTOKEN").Return(stored, nil)

	// 2回目のrevokeは静かに成功しない
	err := u.Revoke(context.Background(), "LOGOUTTOKEN")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// =====================
// token生成
// =====================

func TestRandomTokenString_Format(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		s := randomTokenString()
		// 40バイト乱数→大文字hexで80文字
		assert.Regexp(t, refreshTokenPattern, s)

		_, dup := seen[s]
		assert.False(t, dup)
		seen[s] = struct{}{}
	}
}
