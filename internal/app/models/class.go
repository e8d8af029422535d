package models

import "time"

// ClassStatus is the scheduling state of a class
type ClassStatus string

const (
	ClassStatusScheduled ClassStatus = "scheduled"
	ClassStatusCancelled ClassStatus = "cancelled"
)

// Class is a scheduled gym session
type Class struct {
	ID             int64       `json:"id" db:"id" example:"1"`
	Name           string      `json:"name" db:"name" example:"Morning HIIT"`
	Description    *string     `json:"description,omitempty" db:"description"`
	InstructorID   *int64      `json:"instructorId,omitempty" db:"instructor_id" example:"3"`
	InstructorName string      `json:"instructorName,omitempty"`
	Location       *string     `json:"location,omitempty" db:"location" example:"Studio B"`
	StartTime      time.Time   `json:"startTime" db:"start_time"`
	EndTime        time.Time   `json:"endTime" db:"end_time"`
	Capacity       int         `json:"capacity" db:"capacity" example:"20"`
	EnrolledCount  int         `json:"enrolledCount"`
	Status         ClassStatus `json:"status" db:"status" example:"scheduled"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
}

// SpotsLeft returns the remaining capacity, never negative
func (c *Class) SpotsLeft() int {
	if left := c.Capacity - c.EnrolledCount; left > 0 {
		return left
	}
	return 0
}

// ClassFilter narrows the class list
type ClassFilter struct {
	Search       string
	InstructorID int64
	Status       ClassStatus
	From         *time.Time
	To           *time.Time
}
