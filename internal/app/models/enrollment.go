package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentApproved  EnrollmentStatus = "approved"
	EnrollmentRejected  EnrollmentStatus = "rejected"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentPending:  {EnrollmentApproved, EnrollmentRejected, EnrollmentCancelled},
	EnrollmentApproved: {EnrollmentCancelled, EnrollmentCompleted},
}

// Valid reports whether s is a known status
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentApproved, EnrollmentRejected, EnrollmentCancelled, EnrollmentCompleted:
		return true
	}
	return false
}

// Active reports whether the enrollment holds a spot in its class
func (s EnrollmentStatus) Active() bool {
	return s == EnrollmentPending || s == EnrollmentApproved
}

// Terminal reports whether no further transition is possible
func (s EnrollmentStatus) Terminal() bool {
	return len(enrollmentTransitions[s]) == 0
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	for _, allowed := range enrollmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Enrollment captures a member's registration in a class.
type Enrollment struct {
	ID         int64            `json:"id" db:"id"`
	ClassID    int64            `json:"classId" db:"class_id"`
	UserID     int64            `json:"userId" db:"user_id"`
	Status     EnrollmentStatus `json:"status" db:"status"`
	Note       *string          `json:"note,omitempty" db:"note"`
	ClassName  string           `json:"className,omitempty"`
	ClassStart *time.Time       `json:"classStart,omitempty"`
	MemberName string           `json:"memberName,omitempty"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time        `json:"updatedAt" db:"updated_at"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	ClassID int64
	UserID  int64
	Status  EnrollmentStatus
}
