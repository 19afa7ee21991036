package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/middleware"
	sessionpkg "github.com/youth-club/core/internal/pkg/session"
)

func setAuthTokenCookie(c *gin.Context, token string) {
	maxAge := int(sessionpkg.DefaultTTL.Seconds())
	secure := c.Request.TLS != nil
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", secure, true)
}

func clearAuthTokenCookie(c *gin.Context) {
	secure := c.Request.TLS != nil
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", secure, true)
}
