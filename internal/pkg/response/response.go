package response

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/pkg/apperr"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

type pagedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// OK sends a 200 response. Arrays/slices are wrapped in {data: [...]}.
func OK(c *gin.Context, data interface{}) {
	if data != nil {
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Slice {
			c.JSON(http.StatusOK, gin.H{"data": data})
			return
		}
	}
	c.JSON(http.StatusOK, data)
}

// Paged sends a paginated response. A nil slice is sent as [] so empty
// public lists render as "no content yet" rather than null.
func Paged(c *gin.Context, data interface{}, pagination Pagination) {
	if data != nil {
		if v := reflect.ValueOf(data); v.Kind() == reflect.Slice && v.IsNil() {
			data = []struct{}{}
		}
	}
	c.JSON(http.StatusOK, pagedResponse{
		Data:       data,
		Pagination: pagination,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Unauthorized(c *gin.Context) {
	abort(c, http.StatusUnauthorized, "login required")
}

func NotFound(c *gin.Context) {
	abort(c, http.StatusNotFound, "not found")
}

func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	abort(c, http.StatusInternalServerError, "internal server error")
}

func MethodNotAllowed(c *gin.Context) {
	abort(c, http.StatusMethodNotAllowed, "method not allowed")
}

func Conflict(c *gin.Context, message string) {
	abort(c, http.StatusConflict, message)
}

func TooManyRequests(c *gin.Context, message string) {
	abort(c, http.StatusTooManyRequests, message)
}

// Error renders a service error with its status, kind and, for validation
// failures, the offending fields. The raw error is attached to the gin
// context for the request logger.
func Error(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	_ = c.Error(err)
	body := gin.H{
		"ok":      0,
		"code":    status,
		"kind":    apperr.KindOf(err),
		"message": apperr.Message(err),
	}
	if details := apperr.Details(err); len(details) > 0 {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, body)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": 0, "code": status, "message": message})
}
