package domain

import "time"

// Role enumerates the access roles a profile can hold.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleAgent    Role = "AGENT"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to support staff.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleAgent
}

// UserProfile mirrors an auth account 1:1 and carries role and display name.
type UserProfile struct {
	ID        string
	Role      Role
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
