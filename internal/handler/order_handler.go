package handler

import (
	"net/http"
	"strconv"

	"northwind/internal/middleware"
	"northwind/internal/token"
	"northwind/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, issuer *token.Issuer, verifier middleware.TokenVerifier) {
	g := e.Group("/api/order")
	g.Use(middleware.AuthJWT(issuer))
	g.Use(middleware.TokenFingerprintGuard(verifier))

	elevated := g.Group("")
	elevated.Use(middleware.RequireElevated())
	elevated.GET("/get-all-orders", h.listAll)
	elevated.GET("/get-orders-by-country", h.listByCountry)

	g.GET("/get-my-orders", h.listMine)
}

func (h *OrderHandler) listAll(c echo.Context) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListAllOrders(c.Request().Context(), caller)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) listByCountry(c echo.Context) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListOrdersByCountry(c.Request().Context(), caller)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	// Admin/VD向け：任意のemployee_idを見られる
	var employeeID int64
	if v := c.QueryParam("id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		}
		employeeID = id
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), caller, employeeID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
