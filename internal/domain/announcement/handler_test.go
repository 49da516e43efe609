package announcement

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hepacare/cdss/internal/platform/auth"
)

func testSession(principals map[string]auth.Principal) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := principals[auth.TokenFromHeader(c)]
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}
			c.SetRequest(c.Request().WithContext(auth.WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

func newAnnouncementApp() (*echo.Echo, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())

	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"), testSession(map[string]auth.Principal{
		"tok-doc":   {ID: uuid.New(), LoginID: "doc-1"},
		"tok-admin": {ID: uuid.New(), LoginID: "admin-1", Superuser: true},
	}))
	return e, repo
}

func doReq(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_DoctorsSeeOnlyActive(t *testing.T) {
	e, _ := newAnnouncementApp()

	res := doReq(e, http.MethodPost, "/api/v1/admin/announcements", "tok-admin",
		`{"title":"Visible","content":"x"}`)
	if res.Code != http.StatusCreated {
		t.Fatalf("post: expected 201, got %d: %s", res.Code, res.Body.String())
	}
	res = doReq(e, http.MethodPost, "/api/v1/admin/announcements", "tok-admin",
		`{"title":"Hidden","content":"x","active":false}`)
	if res.Code != http.StatusCreated {
		t.Fatalf("post inactive: expected 201, got %d", res.Code)
	}

	res = doReq(e, http.MethodGet, "/api/v1/announcements", "tok-doc", "")
	if res.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", res.Code)
	}
	var resp struct {
		Data  []*Announcement `json:"data"`
		Total int             `json:"total"`
	}
	json.Unmarshal(res.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Data[0].Title != "Visible" {
		t.Errorf("expected only the active notice, got total=%d", resp.Total)
	}

	res = doReq(e, http.MethodGet, "/api/v1/admin/announcements", "tok-admin", "")
	json.Unmarshal(res.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("expected admin listing to include both, got %d", resp.Total)
	}
}

func TestHandler_AdminGateAndLifecycle(t *testing.T) {
	e, _ := newAnnouncementApp()

	res := doReq(e, http.MethodPost, "/api/v1/admin/announcements", "tok-doc",
		`{"title":"Nope","content":"x"}`)
	if res.Code != http.StatusForbidden {
		t.Errorf("doctor post: expected 403, got %d", res.Code)
	}

	res = doReq(e, http.MethodPost, "/api/v1/admin/announcements", "tok-admin",
		`{"title":"Notice","content":"x"}`)
	var created Announcement
	json.Unmarshal(res.Body.Bytes(), &created)

	res = doReq(e, http.MethodPut, "/api/v1/admin/announcements/"+created.ID.String(), "tok-admin",
		`{"title":"Notice","content":"x","active":false}`)
	if res.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", res.Code, res.Body.String())
	}

	res = doReq(e, http.MethodDelete, "/api/v1/admin/announcements/"+created.ID.String(), "tok-admin", "")
	if res.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", res.Code)
	}

	res = doReq(e, http.MethodPut, "/api/v1/admin/announcements/"+uuid.NewString(), "tok-admin",
		`{"title":"t","content":"c"}`)
	if res.Code != http.StatusNotFound {
		t.Errorf("update missing: expected 404, got %d", res.Code)
	}
}
