package entities

import "slices"

// Role names with special meaning to the access guard.
const (
	RoleAdmin = "admin"
	RolePro   = "pro"
)

// Identity is an authenticated actor as resolved by the external transport
// layer. The core never issues, parses, or verifies tokens; it only consumes
// the subject and role set threaded explicitly through every operation.
type Identity struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles,omitempty"`
}

// HasRole reports whether the identity carries the given role.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// Controlled is any record carrying owner/read/write access lists.
type Controlled interface {
	GetOwner() string
	GetRead() []string
	GetWrite() []string
}
