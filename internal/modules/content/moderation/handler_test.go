package moderation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/testutil"
)

func init() { gin.SetMode(gin.TestMode) }

var testCallers = map[string]access.Caller{
	"member": member,
	"admin":  admin,
}

// fakeAuth binds the caller named by the X-Test-Caller header.
func fakeAuth(c *gin.Context) {
	if caller, ok := testCallers[c.GetHeader("X-Test-Caller")]; ok {
		middleware.WithCaller(c, caller)
	}
	c.Next()
}

func requireCaller(c *gin.Context) {
	if !middleware.IsAuthenticated(c) {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Next()
}

type galleryAPI struct {
	router   *gin.Engine
	notifier *testutil.Notifier
}

func newGalleryAPI() *galleryAPI {
	repo := testutil.NewContentRepository[models.GalleryImage, *models.GalleryImage]()
	notifier := &testutil.Notifier{}
	svc := NewService[models.GalleryImage, *models.GalleryImage](repo, notifier, nil)

	r := gin.New()
	api := r.Group("/api/v1", fakeAuth)
	NewHandler(svc).RegisterRoutes(api, requireCaller)
	return &galleryAPI{router: r, notifier: notifier}
}

func (a *galleryAPI) do(method, path, caller, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if caller != "" {
		req.Header.Set("X-Test-Caller", caller)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type pagedGallery struct {
	Data       []models.GalleryImage `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func TestGalleryHTTPFlow(t *testing.T) {
	api := newGalleryAPI()

	w := api.do(http.MethodPost, "/api/v1/gallery", "member",
		`{"title":"Tree Planting","imageUrl":"https://cdn.example.org/tree.jpg","status":"approved"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.GalleryImage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.NotContains(t, w.Body.String(), `"description"`)

	w = api.do(http.MethodGet, "/api/v1/gallery", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page pagedGallery
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Empty(t, page.Data)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	w = api.do(http.MethodPost, "/api/v1/gallery/"+created.ID+"/approve", "member", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"authorization"`)

	w = api.do(http.MethodPost, "/api/v1/gallery/"+created.ID+"/approve", "admin", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"approvedBy":"admin-1"`)

	w = api.do(http.MethodPost, "/api/v1/gallery/"+created.ID+"/reject", "admin", `{"note":"late"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already approved")

	w = api.do(http.MethodGet, "/api/v1/gallery", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Tree Planting", page.Data[0].Title)

	require.Len(t, api.notifier.Events(), 1)
}

func TestGalleryHTTPValidation(t *testing.T) {
	api := newGalleryAPI()

	w := api.do(http.MethodPost, "/api/v1/gallery", "member", `{"title":"No image"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"imageUrl":"required"}`, extract(t, w, "details"))

	w = api.do(http.MethodPost, "/api/v1/gallery", "member", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/v1/gallery?status=archived", "admin", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGalleryHTTPAuthAndLookup(t *testing.T) {
	api := newGalleryAPI()

	w := api.do(http.MethodPost, "/api/v1/gallery", "", `{"title":"x","imageUrl":"https://a.b/c.jpg"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/v1/gallery/state", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/v1/gallery/state", "admin", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pending":0,"approved":0,"rejected":0}`, w.Body.String())

	w = api.do(http.MethodGet, "/api/v1/gallery/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodDelete, "/api/v1/gallery/nope", "admin", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func extract(t *testing.T, w *httptest.ResponseRecorder, key string) string {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return string(body[key])
}
