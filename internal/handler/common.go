package handler

import (
	"net/http"

	"northwind/internal/middleware"
	"northwind/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

//middleware.AuthJWTがcontextに入れたクレームからCallerIdentityを組み立てる

func callerFromContext(c echo.Context) (usecase.CallerIdentity, bool) {
	username, ok := c.Get(middleware.CtxUsernameKey).(string)
	if !ok || username == "" {
		return usecase.CallerIdentity{}, false
	}

	roles, _ := c.Get(middleware.CtxRolesKey).([]string)
	country, _ := c.Get(middleware.CtxCountryKey).(string)

	return usecase.CallerIdentity{
		Username: username,
		Roles:    roles,
		Country:  country,
	}, true
}
