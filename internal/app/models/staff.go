package models

import "time"

// SkillStatus is the review state of a trainer skill
type SkillStatus string

const (
	SkillPending  SkillStatus = "pending"
	SkillApproved SkillStatus = "approved"
	SkillRejected SkillStatus = "rejected"
)

// Staff is a personal trainer or instructor
type Staff struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	FirstName string    `json:"firstName" db:"first_name" example:"Alex"`
	LastName  string    `json:"lastName" db:"last_name" example:"Stone"`
	Email     string    `json:"email" db:"email" example:"alex@gym.example"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Bio       *string   `json:"bio,omitempty" db:"bio"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	Skills    []Skill   `json:"skills"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName returns "First Last"
func (s *Staff) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Skill is a qualification that needs admin approval before it is shown to members
type Skill struct {
	ID         int64       `json:"id" db:"id"`
	StaffID    int64       `json:"staffId" db:"staff_id"`
	Name       string      `json:"name" db:"name" example:"Kettlebell"`
	Status     SkillStatus `json:"status" db:"status" example:"pending"`
	ReviewedAt *time.Time  `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
}

// StaffFilter narrows the staff list
type StaffFilter struct {
	Search      string
	IsActive    *bool
	SkillStatus SkillStatus
}
