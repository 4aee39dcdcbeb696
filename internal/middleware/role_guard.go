package middleware

import (
	"net/http"

	"northwind/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextに入っているロールのどれかがnamesにあれば許可。
func RoleGuard(names ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(CtxRolesKey).([]string)
			if !ok || len(roles) == 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			for _, r := range roles {
				if _, ok := allowed[r]; ok {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
		}
	}
}

// Adminだけ許可
func RequireAdmin() echo.MiddlewareFunc {
	return RoleGuard(model.RoleAdmin)
}

// AdminかVDを許可
func RequireAdminOrVD() echo.MiddlewareFunc {
	return RoleGuard(model.RoleAdmin, model.RoleVD)
}

// 管理系（Admin/VD/CountryManager）を許可
func RequireElevated() echo.MiddlewareFunc {
	return RoleGuard(model.RoleAdmin, model.RoleVD, model.RoleCountryManager)
}
