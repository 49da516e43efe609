package patient

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
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, requireSession echo.MiddlewareFunc) {
	sess := api.Group("", requireSession)
	sess.GET("/patients", h.List)
	sess.POST("/patients", h.Create)
	sess.GET("/patients/:id", h.Get)
	sess.PUT("/patients/:id", h.Update)
	sess.DELETE("/patients/:id", h.Delete)

	admin := api.Group("/admin", requireSession, auth.RequireSuperuser())
	admin.GET("/patients", h.ListAll)
	admin.PUT("/patients/:id/owner", h.Reassign)
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromEcho(c)
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return p, nil
}

func (h *Handler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var rec Record
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.svc.Create(c.Request().Context(), p, &rec)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			return echo.NewHTTPError(http.StatusConflict, "patient_code already exists")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	rec, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in Record
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.svc.Update(c.Request().Context(), p, id, &in)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		case errors.Is(err, errs.ErrDuplicateKey):
			return echo.NewHTTPError(http.StatusConflict, "patient_code already exists")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.svc.Delete(c.Request().Context(), p, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)

	records, total, err := h.svc.List(c.Request().Context(), p, c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListAll(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)

	var owner *uuid.UUID
	if raw := c.QueryParam("owner"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid owner")
		}
		owner = &id
	}

	records, total, err := h.svc.ListAll(c.Request().Context(), p, owner, c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, errs.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "superuser required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg.Limit, pg.Offset))
}

type reassignRequest struct {
	OwnerID uuid.UUID `json:"owner_id"`
}

func (h *Handler) Reassign(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reassignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.OwnerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "owner_id is required")
	}

	if err := h.svc.Reassign(c.Request().Context(), p, id, req.OwnerID); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "reassignment requires superuser")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "reassign failed")
		}
	}
	return c.NoContent(http.StatusNoContent)
}
