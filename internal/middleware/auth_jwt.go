package middleware

import (
	"net/http"
	"strings"

	"northwind/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUsernameKey   = "username"    // string
	CtxRolesKey      = "roles"       // []string
	CtxCountryKey    = "country"     // string
	CtxAuthHeaderKey = "auth_header" // string（"Bearer ..."の生の値）
)

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//署名と期限を検証してクレームを取り出す
			claims, err := issuer.Parse(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUsernameKey, claims.Username)
			c.Set(CtxRolesKey, claims.Roles)
			c.Set(CtxCountryKey, claims.Country)
			c.Set(CtxAuthHeaderKey, authz)

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
