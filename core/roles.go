package core

// Roles
const (
	RoleParent    = "parent"
	RoleStudent   = "student"
	RoleTeacher   = "teacher"
	RoleCounselor = "counselor"
	RoleSchool    = "school"
	RoleAdmin     = "admin"
)

var AllRoles = []string{RoleParent, RoleStudent, RoleTeacher, RoleCounselor, RoleSchool, RoleAdmin}

func IsRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
