// Package constants defines admin roles and the capability each role grants.
package constants

// Roles stored in admin_users.role.
const (
	SuperAdmin = "super_admin"
	Admin      = "admin"
	Viewer     = "viewer"
)

// Capabilities checked by the admin routes.
const (
	View        = "view"
	Edit        = "edit"
	Delete      = "delete"
	ManageUsers = "manage_users"
)

type capabilitySet map[string]struct{}

func caps(names ...string) capabilitySet {
	s := make(capabilitySet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Editors see, change and remove guests and responses; only super admins manage accounts.
var roleCapabilities = map[string]capabilitySet{
	SuperAdmin: caps(View, Edit, Delete, ManageUsers),
	Admin:      caps(View, Edit, Delete),
	Viewer:     caps(View),
}

// IsValidRole reports whether role is a known role.
func IsValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// HasCapability reports whether role grants capability. Unknown roles grant nothing.
func HasCapability(role, capability string) bool {
	_, ok := roleCapabilities[role][capability]
	return ok
}
