// Package access decides what a caller may do. It is a pure function of the
// caller's role and the requested operation; it never touches a store.
package access

import (
	"fmt"

	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
)

type Operation string

const (
	OpReadPublic  Operation = "read-public"
	OpReadAll     Operation = "read-all"
	OpCreate      Operation = "create"
	OpModerate    Operation = "moderate"
	OpManageUsers Operation = "manage-users"
)

// ResourceContact is the non-moderated contact-message resource. Content
// kinds use their models.ContentKind name.
const ResourceContact = "contact"

// Scope restricts which records a permitted read may return.
type Scope int

const (
	ScopeNone Scope = iota
	// ScopeApproved limits results to approved records.
	ScopeApproved
	// ScopeOwn limits results to records created by the caller.
	ScopeOwn
	// ScopeAll returns records in every status.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeApproved:
		return "approved"
	case ScopeOwn:
		return "own"
	case ScopeAll:
		return "all"
	}
	return "none"
}

// Caller identifies who is making a request. A zero Caller is anonymous.
type Caller struct {
	UserID string
	Role   models.UserRole
}

func Anonymous() Caller { return Caller{} }

// Authenticated reports whether the caller has a session and a known role.
func (c Caller) Authenticated() bool {
	return c.UserID != "" && c.Role.Valid()
}

// Elevated reports whether the caller may moderate.
func (c Caller) Elevated() bool {
	return c.Authenticated() && c.Role.AtLeast(models.RoleAdmin)
}

type Decision struct {
	Allowed bool
	Scope   Scope
}

var anonymousCreate = map[string]bool{
	string(models.KindRegistration): true,
	ResourceContact:                 true,
}

// Decide returns whether caller may perform op on resource. Unknown
// operations, unknown roles and missing sessions are denied for anything
// beyond read-public.
func Decide(caller Caller, op Operation, resource string) Decision {
	switch op {
	case OpReadPublic:
		return Decision{Allowed: true, Scope: ScopeApproved}
	case OpReadAll:
		if caller.Elevated() {
			return Decision{Allowed: true, Scope: ScopeAll}
		}
		if caller.Authenticated() {
			return Decision{Allowed: true, Scope: ScopeOwn}
		}
	case OpCreate:
		if caller.Authenticated() || (caller.UserID == "" && anonymousCreate[resource]) {
			return Decision{Allowed: true, Scope: ScopeOwn}
		}
	case OpModerate:
		if caller.Elevated() {
			return Decision{Allowed: true, Scope: ScopeAll}
		}
	case OpManageUsers:
		if caller.Authenticated() && caller.Role == models.RoleSuperAdmin {
			return Decision{Allowed: true, Scope: ScopeAll}
		}
	}
	return Decision{}
}

// Check is Decide returning an authorization error on deny.
func Check(caller Caller, op Operation, resource string) (Decision, error) {
	d := Decide(caller, op, resource)
	if d.Allowed {
		return d, nil
	}
	if !caller.Authenticated() {
		return d, apperr.Unauthenticated()
	}
	return d, apperr.Forbidden(fmt.Sprintf("role %s may not %s %s", caller.Role, op, resource))
}
