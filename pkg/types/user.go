package types

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleRoot  Role = "root"
)

// Privileged roles skip every entitlement check.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleRoot
}
