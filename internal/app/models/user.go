package models

import (
	"time"
)

// User defines the member/staff/admin account based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"member@gym.example"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name" example:"Jane"`
	LastName    string     `json:"lastName" db:"last_name" example:"Doe"`
	Phone       *string    `json:"phone,omitempty" db:"phone" example:"+1 555 0100"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"CUSTOMER"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserFilter narrows the admin user list
type UserFilter struct {
	Search   string
	Role     RoleType
	IsActive *bool
}
