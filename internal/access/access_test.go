package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
)

var (
	anon       = Anonymous()
	applicant  = Caller{UserID: "u-applicant", Role: models.RoleApplicant}
	member     = Caller{UserID: "u-member", Role: models.RoleMember}
	admin      = Caller{UserID: "u-admin", Role: models.RoleAdmin}
	superAdmin = Caller{UserID: "u-super", Role: models.RoleSuperAdmin}
	bogus      = Caller{UserID: "u-bogus", Role: "root"}
)

func TestDecide(t *testing.T) {
	gallery := string(models.KindGallery)
	registration := string(models.KindRegistration)

	tests := []struct {
		name     string
		caller   Caller
		op       Operation
		resource string
		allowed  bool
		scope    Scope
	}{
		{"anonymous reads public", anon, OpReadPublic, gallery, true, ScopeApproved},
		{"admin public read is still approved only", admin, OpReadPublic, gallery, true, ScopeApproved},
		{"anonymous read-all denied", anon, OpReadAll, gallery, false, ScopeNone},
		{"member read-all is own scope", member, OpReadAll, gallery, true, ScopeOwn},
		{"applicant read-all is own scope", applicant, OpReadAll, registration, true, ScopeOwn},
		{"admin read-all", admin, OpReadAll, gallery, true, ScopeAll},
		{"super admin read-all", superAdmin, OpReadAll, gallery, true, ScopeAll},
		{"anonymous create gallery denied", anon, OpCreate, gallery, false, ScopeNone},
		{"anonymous create registration", anon, OpCreate, registration, true, ScopeOwn},
		{"anonymous create contact", anon, OpCreate, ResourceContact, true, ScopeOwn},
		{"member create gallery", member, OpCreate, gallery, true, ScopeOwn},
		{"member moderate denied", member, OpModerate, gallery, false, ScopeNone},
		{"admin moderate", admin, OpModerate, gallery, true, ScopeAll},
		{"super admin moderate", superAdmin, OpModerate, gallery, true, ScopeAll},
		{"admin manage users denied", admin, OpManageUsers, "users", false, ScopeNone},
		{"super admin manage users", superAdmin, OpManageUsers, "users", true, ScopeAll},
		{"unknown role denied read-all", bogus, OpReadAll, gallery, false, ScopeNone},
		{"unknown role denied create registration", bogus, OpCreate, registration, false, ScopeNone},
		{"unknown operation denied", superAdmin, Operation("publish"), gallery, false, ScopeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.caller, tt.op, tt.resource)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.scope, d.Scope)
		})
	}
}

func TestCheckErrors(t *testing.T) {
	_, err := Check(member, OpModerate, string(models.KindNews))
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
	assert.Equal(t, 403, apperr.HTTPStatus(err))

	_, err = Check(anon, OpModerate, string(models.KindNews))
	require.Error(t, err)
	assert.Equal(t, 401, apperr.HTTPStatus(err))

	d, err := Check(admin, OpModerate, string(models.KindNews))
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, d.Scope)
}
