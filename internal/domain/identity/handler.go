package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hepacare/cdss/internal/platform/auth"
	"github.com/hepacare/cdss/internal/platform/errs"
	"github.com/hepacare/cdss/pkg/pagination"
)

type Handler struct {
	svc      *Service
	sessions *auth.Manager
}

func NewHandler(svc *Service, sessions *auth.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) RegisterRoutes(api *echo.Group, requireSession echo.MiddlewareFunc) {
	api.POST("/auth/login", h.Login)

	sess := api.Group("", requireSession)
	sess.POST("/auth/logout", h.Logout)
	sess.GET("/auth/me", h.Me)
	sess.PUT("/auth/secret", h.ChangeSecret)
	sess.PUT("/profile/status", h.ChangeStatus)

	admin := api.Group("/admin", requireSession, auth.RequireSuperuser())
	admin.POST("/identities", h.Provision)
	admin.GET("/identities", h.List)
	admin.DELETE("/identities/:id", h.Deprovision)
}

type loginRequest struct {
	LoginID string `json:"login_id"`
	Secret  string `json:"secret"`
}

type loginResponse struct {
	Token    string  `json:"token"`
	Identity Account `json:"account"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	ident, err := h.svc.Authenticate(ctx, req.LoginID, req.Secret)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	token, err := h.sessions.Open(ctx, ident.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	account, err := h.svc.Get(ctx, ident.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, Identity: *account})
}

func (h *Handler) Logout(c echo.Context) error {
	token := auth.TokenFromHeader(c)
	if err := h.sessions.Close(c.Request().Context(), token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	p, ok := auth.PrincipalFromEcho(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	account, err := h.svc.Get(c.Request().Context(), p.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(http.StatusOK, account)
}

type changeSecretRequest struct {
	CurrentSecret string `json:"current_secret"`
	NewSecret     string `json:"new_secret"`
}

func (h *Handler) ChangeSecret(c echo.Context) error {
	p, ok := auth.PrincipalFromEcho(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	var req changeSecretRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.svc.ChangeSecret(c.Request().Context(), p.ID, req.CurrentSecret, req.NewSecret)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) ChangeStatus(c echo.Context) error {
	p, ok := auth.PrincipalFromEcho(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.ChangeStatus(c.Request().Context(), p.ID, req.Status); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Provision(c echo.Context) error {
	var in ProvisionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.svc.Provision(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			return echo.NewHTTPError(http.StatusConflict, "login_id already exists")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, account)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	accounts, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(accounts, total, pg.Limit, pg.Offset))
}

func (h *Handler) Deprovision(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.svc.Deprovision(c.Request().Context(), id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "identity not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "deprovision failed")
	}
	return c.NoContent(http.StatusNoContent)
}
