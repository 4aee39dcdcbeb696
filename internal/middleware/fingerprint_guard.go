package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// fingerprintの照合だけを約束する（実装はAccountUsecase）。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, username string, presented string) bool
}

// 提示されたAuthorizationヘッダとDBに保存中のトークンが一致するか確認。
// 署名が有効でも、サーバー側でトークンを消していれば401（強制ログアウト）。
func TokenFingerprintGuard(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたusernameを取得する
			username, ok := c.Get(CtxUsernameKey).(string)
			if !ok || username == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//AuthJWTが入れた生のヘッダ値を取得する
			authz, ok := c.Get(CtxAuthHeaderKey).(string)
			if !ok || authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//"Bearer " + 保存中トークンと一致しなければ401
			if !verifier.VerifyToken(c.Request().Context(), username, authz) {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			return next(c)
		}
	}
}
