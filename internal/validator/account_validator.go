package validator

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"northwind/internal/usecase"
)

// 入力が不正
var ErrInvalidInput = errors.New("invalid input")

type accountValidator struct{}

// Usecaseは interface を依存注入
func NewAccountValidator() usecase.AccountValidator {
	return &accountValidator{}
}

// ログインの入力を検証
func (v *accountValidator) ValidateAuthenticate(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	return nil
}

// 登録の入力を検証
func (v *accountValidator) ValidateRegister(ctx context.Context, req usecase.RegisterRequest) error {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	// 必須チェック
	if username == "" || email == "" || req.Password == "" {
		return ErrInvalidInput
	}

	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	// パスワード最低文字数（6）
	if len(req.Password) < 6 {
		return ErrInvalidInput
	}

	// employee linkageは必須
	if req.EmployeeID <= 0 {
		return ErrInvalidInput
	}

	return nil
}

// メールチェック
func isEmailLike(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
