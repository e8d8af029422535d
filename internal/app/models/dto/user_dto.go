package dto

// CreateUserRequest represents admin-side account creation
type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName string  `json:"firstName" binding:"required,min=2,max=100"`
	LastName  string  `json:"lastName" binding:"required,min=2,max=100"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=30"`
	RoleType  string  `json:"roleType" binding:"required,oneof=ADMIN STAFF CUSTOMER"`
}

// UpdateUserRequest carries a partial account update
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Password  *string `json:"password,omitempty" binding:"omitempty,min=8"`
	FirstName *string `json:"firstName,omitempty" binding:"omitempty,min=2,max=100"`
	LastName  *string `json:"lastName,omitempty" binding:"omitempty,min=2,max=100"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=30"`
	RoleType  *string `json:"roleType,omitempty" binding:"omitempty,oneof=ADMIN STAFF CUSTOMER"`
	IsActive  *bool   `json:"isActive,omitempty"`
}
