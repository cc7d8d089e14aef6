package model

type UserRole int8

const (
	UserRoleDefault = UserRole(iota)
	UserRoleAdmin
	UserRolePro
)

func ParseUserRole(s string) UserRole {
	switch s {
	case "admin":
		return UserRoleAdmin
	case "pro", "premium":
		return UserRolePro
	default:
		return UserRoleDefault
	}
}

func (r UserRole) String() string {
	switch r {
	case UserRoleAdmin:
		return "admin"
	case UserRolePro:
		return "pro"
	default:
		return "default"
	}
}
