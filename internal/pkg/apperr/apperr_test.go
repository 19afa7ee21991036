package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", Validation("invalid payload", map[string]string{"phone": "required"}), http.StatusBadRequest, "validation"},
		{"forbidden", Forbidden("moderation requires admin"), http.StatusForbidden, "authorization"},
		{"unauthenticated", Unauthenticated(), http.StatusUnauthorized, "authorization"},
		{"conflict", Conflict("record is already approved"), http.StatusConflict, "conflict"},
		{"not found", NotFound("gallery", "abc"), http.StatusNotFound, "not_found"},
		{"store", Store(fmt.Errorf("connection reset"), "insert gallery"), http.StatusInternalServerError, "store"},
		{"unmarked", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestUnauthenticatedIsAuthorization(t *testing.T) {
	err := Unauthenticated()
	assert.True(t, IsAuthorization(err))
	assert.True(t, IsUnauthenticated(err))
	assert.True(t, IsUnauthenticated(fmt.Errorf("list users: %w", err)))
	assert.False(t, IsUnauthenticated(Forbidden("admin only")))
	assert.False(t, IsAuthorization(Conflict("x")))
}

func TestMarksSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("approve: %w", Conflict("record is already rejected"))
	assert.True(t, IsConflict(err))
	assert.Equal(t, "record is already rejected", Message(err))
}

func TestStoreMessageHidesCause(t *testing.T) {
	err := Store(fmt.Errorf("dial tcp 10.0.0.1:27017: i/o timeout"), "find members")
	assert.True(t, IsStore(err))
	assert.NotContains(t, Message(err), "10.0.0.1")
	assert.Contains(t, err.Error(), "i/o timeout")
	assert.Nil(t, Store(nil, "noop"))
}

func TestValidationDetails(t *testing.T) {
	err := Validation("invalid registration", map[string]string{"phone": "required", "email": "email"})
	assert.Equal(t, map[string]string{"phone": "required", "email": "email"}, Details(err))
	assert.Equal(t, "invalid registration: email, phone", Message(err))
	assert.Nil(t, Details(NotFound("news", "1")))
}
