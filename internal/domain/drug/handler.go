package drug

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
	sess.GET("/drugs", h.List)
	sess.GET("/drugs/:code", h.Get)
	sess.GET("/patients/:id/interactions", h.InteractionsForPatient)

	admin := api.Group("/admin", requireSession, auth.RequireSuperuser())
	admin.POST("/drugs", h.Create)
	admin.PUT("/drugs/:code", h.Update)
	admin.DELETE("/drugs/:code", h.Delete)
	admin.POST("/interactions", h.AddInteraction)
	admin.DELETE("/interactions/:id", h.RemoveInteraction)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Limit:    pg.Limit,
		Offset:   pg.Offset,
	}
	drugs, total, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(drugs, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	d, err := h.svc.Get(c.Request().Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Create(c echo.Context) error {
	var d Drug
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), &d)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			return echo.NewHTTPError(http.StatusConflict, "drug code already exists")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	var d Drug
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.svc.Update(c.Request().Context(), c.Param("code"), &d)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("code")); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddInteraction(c echo.Context) error {
	var in Interaction
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddInteraction(c.Request().Context(), &in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) RemoveInteraction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveInteraction(c.Request().Context(), id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "interaction not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) InteractionsForPatient(c echo.Context) error {
	p, ok := auth.PrincipalFromEcho(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	items, err := h.svc.InteractionsForPatient(c.Request().Context(), p, patientID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	if items == nil {
		items = []*Interaction{}
	}
	return c.JSON(http.StatusOK, items)
}
