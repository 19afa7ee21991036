package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/jwt"
	"github.com/youth-club/core/internal/pkg/response"
	sessionpkg "github.com/youth-club/core/internal/pkg/session"
	"gorm.io/gorm"
)

const (
	ContextKeyCaller = "caller"
	ContextKeySID    = "session_id"

	// TokenCookie carries the session token for browser clients.
	TokenCookie = "yc-token"
)

// Auth rejects requests without a valid session token.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextKeyCaller); ok {
			c.Next()
			return
		}
		caller, claims, err := Authenticate(db, extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		bind(c, db, caller, claims)
		c.Next()
	}
}

// OptionalAuth binds the caller if a valid token is present, but does not
// block anonymous requests.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller, claims, err := Authenticate(db, extractToken(c)); err == nil {
			bind(c, db, caller, claims)
		}
		c.Next()
	}
}

func bind(c *gin.Context, db *gorm.DB, caller access.Caller, claims *jwt.Claims) {
	WithCaller(c, caller)
	c.Set(ContextKeySID, claims.SessionID)
	sessionpkg.Touch(db, claims.UserID, claims.SessionID)
}

// Authenticate validates a raw token and resolves the caller's current role
// from the identity store, so role changes apply without re-login.
func Authenticate(db *gorm.DB, rawToken string) (access.Caller, *jwt.Claims, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return access.Caller{}, nil, errors.New("token is required")
	}

	claims, err := jwt.Parse(token)
	if err != nil {
		return access.Caller{}, nil, err
	}
	active, err := sessionpkg.IsActive(db, claims.UserID, claims.SessionID)
	if err != nil {
		return access.Caller{}, nil, err
	}
	if !active {
		return access.Caller{}, nil, errors.New("session expired or revoked")
	}

	var user models.UserModel
	if err := db.Select("id", "role").First(&user, "id = ?", claims.UserID).Error; err != nil {
		return access.Caller{}, nil, err
	}
	return access.Caller{UserID: user.ID, Role: user.Role}, claims, nil
}

// WithCaller binds caller to the request context.
func WithCaller(c *gin.Context, caller access.Caller) {
	c.Set(ContextKeyCaller, caller)
}

// CurrentCaller returns the bound caller, or an anonymous one.
func CurrentCaller(c *gin.Context) access.Caller {
	v, _ := c.Get(ContextKeyCaller)
	caller, _ := v.(access.Caller)
	return caller
}

// CurrentSessionID extracts the authenticated session ID from context.
func CurrentSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySID)
}

// IsAuthenticated returns true if the request carries a valid session.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentCaller(c).UserID != ""
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	if token := NormalizeToken(c.Query("token")); token != "" {
		return token
	}
	if raw, err := c.Cookie(TokenCookie); err == nil {
		return NormalizeToken(raw)
	}
	return ""
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
