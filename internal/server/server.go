package server

import (
	"northwind/internal/handler"
	"northwind/internal/middleware"
	"northwind/internal/token"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はルーティング済みのechoを返す。
func New(
	issuer *token.Issuer,
	verifier middleware.TokenVerifier,
	userH *handler.UserHandler,
	orderH *handler.OrderHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	userH.RegisterRoutes(e, issuer)
	orderH.RegisterRoutes(e, issuer, verifier)

	return e
}
