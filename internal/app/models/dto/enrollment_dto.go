package dto

// CreateEnrollmentRequest enrolls a member in a class. UserID is only honoured
// for admins; customers always enroll themselves.
type CreateEnrollmentRequest struct {
	ClassID int64   `json:"classId" binding:"required,min=1"`
	UserID  *int64  `json:"userId,omitempty" binding:"omitempty,min=1"`
	Note    *string `json:"note,omitempty" binding:"omitempty,max=500"`
}

// UpdateEnrollmentRequest moves an enrollment through its lifecycle
type UpdateEnrollmentRequest struct {
	Status string  `json:"status" binding:"required,oneof=pending approved rejected cancelled completed"`
	Note   *string `json:"note,omitempty" binding:"omitempty,max=500"`
}
