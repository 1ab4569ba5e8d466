// Package memberrole represents the role a user holds inside a workspace.
package memberrole

import "fmt"

// The set of member roles that can be used.
var (
	Owner  = newRole("OWNER")
	Editor = newRole("EDITOR")
	Viewer = newRole("VIEWER")
)

// =============================================================================

// Set of known member roles.
var roles = make(map[string]Role)

// Role represents a member role in the system.
type Role struct {
	value string
}

func newRole(role string) Role {
	r := Role{role}
	roles[role] = r
	return r
}

// String returns the name of the member role.
func (r Role) String() string {
	return r.value
}

// Equal provides support for the go-cmp package and testing.
func (r Role) Equal(r2 Role) bool {
	return r.value == r2.value
}

// MarshalText provides support for logging and any marshal needs.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.value), nil
}

// =============================================================================

// Parse parses the string value and returns a member role if one exists.
func Parse(value string) (Role, error) {
	role, exists := roles[value]
	if !exists {
		return Role{}, fmt.Errorf("invalid member role %q", value)
	}

	return role, nil
}

// MustParse parses the string value and returns a member role if one exists.
// If an error occurs the function panics.
func MustParse(value string) Role {
	role, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return role
}
