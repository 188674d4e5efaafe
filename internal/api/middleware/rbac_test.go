package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

func runRBAC(t *testing.T, mw echo.MiddlewareFunc, role string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("role", role)
	}

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func TestRBAC_AllowedRole(t *testing.T) {
	mw := RBAC(domain.RoleFinancialManager, domain.RoleAdmin)
	if code := runRBAC(t, mw, "administrador"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRBAC_DeniedRole(t *testing.T) {
	mw := RBAC(domain.RoleFinancialManager, domain.RoleAdmin)
	if code := runRBAC(t, mw, "colaborador"); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRBAC_MissingRole(t *testing.T) {
	mw := RBAC(domain.RoleAdmin)
	if code := runRBAC(t, mw, ""); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestReviewers_CoverBothReviewerRoles(t *testing.T) {
	mw := Reviewers()
	for _, role := range []string{"gerencia_financiera", "administrador"} {
		if code := runRBAC(t, mw, role); code != http.StatusOK {
			t.Fatalf("role %s: expected 200, got %d", role, code)
		}
	}
	for _, role := range []string{"colaborador", "auxiliar_contable"} {
		if code := runRBAC(t, mw, role); code != http.StatusForbidden {
			t.Fatalf("role %s: expected 403, got %d", role, code)
		}
	}
}
