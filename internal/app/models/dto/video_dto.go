package dto

// CreateVideoRequest represents workout video creation data
type CreateVideoRequest struct {
	Title           string  `json:"title" binding:"required,min=2,max=200"`
	Description     *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Category        string  `json:"category" binding:"required,min=2,max=60"`
	Difficulty      string  `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	DurationSeconds int     `json:"durationSeconds" binding:"required,min=1,max=36000"`
	VideoURL        *string `json:"videoUrl,omitempty" binding:"omitempty,url"`
	ThumbnailURL    *string `json:"thumbnailUrl,omitempty" binding:"omitempty,url"`
	InstructorID    *int64  `json:"instructorId,omitempty" binding:"omitempty,min=1"`
	IsPublished     bool    `json:"isPublished"`
}

// UpdateVideoRequest carries a partial video update
type UpdateVideoRequest struct {
	Title           *string `json:"title,omitempty" binding:"omitempty,min=2,max=200"`
	Description     *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Category        *string `json:"category,omitempty" binding:"omitempty,min=2,max=60"`
	Difficulty      *string `json:"difficulty,omitempty" binding:"omitempty,oneof=beginner intermediate advanced"`
	DurationSeconds *int    `json:"durationSeconds,omitempty" binding:"omitempty,min=1,max=36000"`
	VideoURL        *string `json:"videoUrl,omitempty" binding:"omitempty,url"`
	ThumbnailURL    *string `json:"thumbnailUrl,omitempty" binding:"omitempty,url"`
	InstructorID    *int64  `json:"instructorId,omitempty" binding:"omitempty,min=1"`
	IsPublished     *bool   `json:"isPublished,omitempty"`
}
