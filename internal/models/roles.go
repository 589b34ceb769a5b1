package models

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// StaffRoles may manage the tool directory and moderate community content.
var StaffRoles = []string{RoleAdmin, RoleModerator}

// HasRole reports whether role is one of allowed.
func HasRole(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
