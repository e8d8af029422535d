package dto

import "time"

// CreateClassRequest represents class creation data
type CreateClassRequest struct {
	Name         string    `json:"name" binding:"required,min=2,max=100"`
	Description  *string   `json:"description,omitempty" binding:"omitempty,max=1000"`
	InstructorID *int64    `json:"instructorId,omitempty" binding:"omitempty,min=1"`
	Location     *string   `json:"location,omitempty" binding:"omitempty,max=100"`
	StartTime    time.Time `json:"startTime" binding:"required"`
	EndTime      time.Time `json:"endTime" binding:"required,gtfield=StartTime"`
	Capacity     int       `json:"capacity" binding:"required,min=1,max=500"`
}

// UpdateClassRequest carries a partial class update; nil fields are left unchanged
type UpdateClassRequest struct {
	Name         *string    `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Description  *string    `json:"description,omitempty" binding:"omitempty,max=1000"`
	InstructorID *int64     `json:"instructorId,omitempty" binding:"omitempty,min=1"`
	Location     *string    `json:"location,omitempty" binding:"omitempty,max=100"`
	StartTime    *time.Time `json:"startTime,omitempty"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Capacity     *int       `json:"capacity,omitempty" binding:"omitempty,min=1,max=500"`
	Status       *string    `json:"status,omitempty" binding:"omitempty,oneof=scheduled cancelled"`
}
