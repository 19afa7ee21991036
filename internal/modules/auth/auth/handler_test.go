package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/testutil"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLite(t, &models.UserModel{}, &models.UserSession{})
	svc := NewService(db, nil)
	svc.failDelay = 0

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), middleware.Auth(db))
	return r, db
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginMeLogout(t *testing.T) {
	r, db := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/auth/register",
		`{"username":"Mira","password":"correct horse","name":"Mira K"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var stored models.UserModel
	require.NoError(t, db.First(&stored, "username = ?", "mira").Error)
	assert.Equal(t, models.RoleApplicant, stored.Role)
	assert.Equal(t, models.ApplicationPending, stored.ApplicationStatus)
	assert.NotEqual(t, "correct horse", stored.Password)

	w = do(r, http.MethodPost, "/api/v1/auth/login", `{"username":"mira","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "Mira K", login.User.Name)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.TokenCookie+"=")

	w = do(r, http.MethodGet, "/api/v1/auth/me", "", login.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var me meResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, stored.ID, me.ID)
	assert.Equal(t, models.RoleApplicant, me.Role)
	assert.Equal(t, models.ApplicationPending, me.ApplicationStatus)
	assert.NotNil(t, me.LastLoginTime)

	w = do(r, http.MethodPost, "/api/v1/auth/logout", "", login.Token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/v1/auth/me", "", login.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRejectsDuplicateAndInvalid(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/auth/register", `{"username":"mira","password":"correct horse"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/api/v1/auth/register", `{"username":"MIRA","password":"another one"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/v1/auth/register", `{"username":"x","password":"short"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation", body["kind"])
	assert.Contains(t, body["details"], "username")
	assert.Contains(t, body["details"], "password")
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	r, _ := newRouter(t)
	do(r, http.MethodPost, "/api/v1/auth/register", `{"username":"mira","password":"correct horse"}`, "")

	wrong := do(r, http.MethodPost, "/api/v1/auth/login", `{"username":"mira","password":"nope nope"}`, "")
	unknown := do(r, http.MethodPost, "/api/v1/auth/login", `{"username":"ghost","password":"nope nope"}`, "")

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
}

func TestMeRequiresSession(t *testing.T) {
	r, _ := newRouter(t)
	w := do(r, http.MethodGet, "/api/v1/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
