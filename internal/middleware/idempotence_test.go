package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postContext(path, body string, decorate func(*http.Request)) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dashboard")
	req.RemoteAddr = "10.0.0.7:5555"
	if decorate != nil {
		decorate(req)
	}
	c.Request = req
	return c
}

func TestIdempotenceKeySeparatesCookieSessions(t *testing.T) {
	body := `{"name":"Ada","message":"hello"}`
	withCookie := func(token string) func(*http.Request) {
		return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) }
	}

	a, err := resolveIdempotenceKey(postContext("/api/v1/members", body, withCookie("token-a")))
	require.NoError(t, err)
	b, err := resolveIdempotenceKey(postContext("/api/v1/members", body, withCookie("token-b")))
	require.NoError(t, err)
	again, err := resolveIdempotenceKey(postContext("/api/v1/members", body, withCookie("token-a")))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)
}

func TestIdempotenceKeyKeepsBodyReadable(t *testing.T) {
	c := postContext("/api/v1/contact", `{"message":"hi"}`, nil)
	key, err := resolveIdempotenceKey(c)
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	var got map[string]string
	require.NoError(t, c.ShouldBindJSON(&got))
	assert.Equal(t, "hi", got["message"])
}

func TestIdempotenceHeaderWins(t *testing.T) {
	c := postContext("/api/v1/contact", `{}`, func(r *http.Request) { r.Header.Set(idempotenceHeader, "form-42") })
	key, err := resolveIdempotenceKey(c)
	require.NoError(t, err)
	assert.Equal(t, "form-42", key)
}

func TestModerationDecisionsSkipIdempotence(t *testing.T) {
	for _, p := range []string{
		"/api/v1/news/66a1/approve",
		"/api/v1/gallery/66a1/reject/",
		"/api/v1/auth/login",
	} {
		assert.True(t, shouldSkipIdempotence(p), p)
	}
	assert.False(t, shouldSkipIdempotence("/api/v1/registrations"))
	assert.False(t, shouldSkipIdempotence("/api/v1/contact"))
}
