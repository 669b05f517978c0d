package auth

const (
	RoleLecturer    = "lecturer"
	RoleCoordinator = "coordinator"
	RoleManager     = "manager"
	RoleHR          = "hr"
)

var AllRoles = []string{RoleLecturer, RoleCoordinator, RoleManager, RoleHR}

func ValidRole(role string) bool {
	for _, known := range AllRoles {
		if role == known {
			return true
		}
	}
	return false
}
