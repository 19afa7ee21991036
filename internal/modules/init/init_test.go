package init_

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/testutil"
)

func init() { gin.SetMode(gin.TestMode) }

func TestSetupCreatesSuperAdminOnce(t *testing.T) {
	db := testutil.NewSQLite(t, &models.UserModel{})
	r := gin.New()
	NewHandler(db, nil).RegisterRoutes(r.Group("/api/v1"))

	call := func(method, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/init", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := call(http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isInit":false}`, w.Body.String())

	w = call(http.MethodPost, `{"username":"short","password":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(http.MethodPost, `{"username":"Founder","password":"club-founder-2026"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var u models.UserModel
	require.NoError(t, db.First(&u).Error)
	assert.Equal(t, "founder", u.Username)
	assert.Equal(t, models.RoleSuperAdmin, u.Role)

	w = call(http.MethodGet, "")
	assert.JSONEq(t, `{"isInit":true}`, w.Body.String())

	w = call(http.MethodPost, `{"username":"second","password":"club-founder-2026"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
