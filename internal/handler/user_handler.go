package handler

import (
	"errors"
	"net/http"

	"northwind/internal/middleware"
	"northwind/internal/token"
	"northwind/internal/usecase"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	accountUC *usecase.AccountUsecase
	refreshUC *usecase.RefreshTokenUsecase
}

func NewUserHandler(accountUC *usecase.AccountUsecase, refreshUC *usecase.RefreshTokenUsecase) *UserHandler {
	return &UserHandler{accountUC: accountUC, refreshUC: refreshUC}
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo, issuer *token.Issuer) {
	g := e.Group("/api/user")

	// 認証不要
	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.POST("/refresh-token", h.refreshToken)

	// JWT + fingerprint必須
	auth := g.Group("")
	auth.Use(middleware.AuthJWT(issuer))
	auth.Use(middleware.TokenFingerprintGuard(h.accountUC))

	auth.PATCH("/update", h.update)
	auth.POST("/revoke-token", h.revokeToken)

	admin := g.Group("")
	admin.Use(middleware.AuthJWT(issuer))
	admin.Use(middleware.TokenFingerprintGuard(h.accountUC))
	admin.Use(middleware.RequireAdmin())

	admin.POST("/register-admin", h.registerAdmin)
	admin.DELETE("/delete", h.deleteUser)

	list := g.Group("")
	list.Use(middleware.AuthJWT(issuer))
	list.Use(middleware.TokenFingerprintGuard(h.accountUC))
	list.Use(middleware.RequireAdminOrVD())

	list.GET("/get-all-users", h.listAll)
}

func (h *UserHandler) login(c echo.Context) error {
	var req usecase.AuthenticateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	resp := h.accountUC.Authenticate(c.Request().Context(), req)
	if !resp.Success {
		return c.JSON(http.StatusBadRequest, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) register(c echo.Context) error {
	var req usecase.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	resp := h.accountUC.RegisterEmployee(c.Request().Context(), req)
	if !resp.Success {
		return c.JSON(http.StatusBadRequest, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) registerAdmin(c echo.Context) error {
	var req usecase.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	resp := h.accountUC.RegisterAdmin(c.Request().Context(), req)
	if !resp.Success {
		return c.JSON(http.StatusBadRequest, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) update(c echo.Context) error {
	caller, ok := callerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	resp := h.accountUC.UpdateUser(c.Request().Context(), req, caller)
	if !resp.Success {
		return c.JSON(http.StatusBadRequest, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// 404=存在しない / 500=削除失敗 を区別して返す
func (h *UserHandler) deleteUser(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "username required"})
	}

	deleted, err := h.accountUC.DeleteUser(c.Request().Context(), username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "delete failed"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "user deleted"})
}

func (h *UserHandler) listAll(c echo.Context) error {
	out, err := h.accountUC.ListAllUsers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) refreshToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	resp, err := h.refreshUC.Rotate(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeTokenError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) revokeToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.refreshUC.Revoke(c.Request().Context(), req.RefreshToken); err != nil {
		return writeTokenError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "token revoked"})
}

// refresh/revokeのhard failureをHTTPへ変換
func writeTokenError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
	case errors.Is(err, usecase.ErrTokenOperationFailed):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "token operation failed"})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
