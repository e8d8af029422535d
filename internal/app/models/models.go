package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin    RoleType = "ADMIN"
	RoleStaff    RoleType = "STAFF"
	RoleCustomer RoleType = "CUSTOMER"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// ListParams carries the pagination and sorting shared by every list endpoint.
// Page is 1-based.
type ListParams struct {
	Page      int
	Size      int
	SortBy    string
	SortOrder string
}

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID int64
	Role   RoleType
}

// IsAdmin reports whether the actor has the ADMIN role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
