package dto

// CreateStaffRequest represents trainer creation data
type CreateStaffRequest struct {
	FirstName string   `json:"firstName" binding:"required,min=2,max=100"`
	LastName  string   `json:"lastName" binding:"required,min=2,max=100"`
	Email     string   `json:"email" binding:"required,email"`
	Phone     *string  `json:"phone,omitempty" binding:"omitempty,max=30"`
	Bio       *string  `json:"bio,omitempty" binding:"omitempty,max=2000"`
	Skills    []string `json:"skills,omitempty" binding:"omitempty,dive,min=2,max=60"`
}

// UpdateStaffRequest carries a partial trainer update
type UpdateStaffRequest struct {
	FirstName *string `json:"firstName,omitempty" binding:"omitempty,min=2,max=100"`
	LastName  *string `json:"lastName,omitempty" binding:"omitempty,min=2,max=100"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=30"`
	Bio       *string `json:"bio,omitempty" binding:"omitempty,max=2000"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// AddSkillRequest adds a skill awaiting review
type AddSkillRequest struct {
	Name string `json:"name" binding:"required,min=2,max=60"`
}

// ReviewSkillRequest approves or rejects a pending skill
type ReviewSkillRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}
