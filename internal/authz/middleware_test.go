package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/velihant/financehub-api/internal/models"
)

func permissionProbe(t *testing.T, perm models.Permission, role models.UserRole, withIdentity bool) int {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequirePermissionHandler(perm, next)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	if withIdentity {
		req = req.WithContext(WithIdentity(req.Context(), "user-1", role))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequirePermission(t *testing.T) {
	assert.Equal(t, http.StatusOK, permissionProbe(t, models.PermTransactionCreate, models.RoleAdmin, true))
	assert.Equal(t, http.StatusOK, permissionProbe(t, models.PermTransactionCreate, models.RoleAnalyst, true))
	assert.Equal(t, http.StatusForbidden, permissionProbe(t, models.PermTransactionCreate, models.RoleViewer, true))
	assert.Equal(t, http.StatusForbidden, permissionProbe(t, models.PermTransactionCreate, models.RoleAdmin, false))
}

func TestIdentityRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), "user-1", models.RoleAnalyst))

	uid, ok := UserIDFromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, "user-1", uid)

	role, ok := RoleFromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, models.RoleAnalyst, role)
}

func TestIdentityRejectsInvalidRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), "user-1", models.UserRole("bogus")))

	_, ok := RoleFromRequest(req)
	assert.False(t, ok)
}
