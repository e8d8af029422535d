package models

import "time"

// Difficulty grades a workout video
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Video is a workout video in the member library
type Video struct {
	ID              int64      `json:"id" db:"id"`
	Title           string     `json:"title" db:"title" example:"Core Basics"`
	Description     *string    `json:"description,omitempty" db:"description"`
	Category        string     `json:"category" db:"category" example:"core"`
	Difficulty      Difficulty `json:"difficulty" db:"difficulty" example:"beginner"`
	DurationSeconds int        `json:"durationSeconds" db:"duration_seconds" example:"900"`
	VideoURL        *string    `json:"videoUrl,omitempty" db:"video_url"`
	ThumbnailURL    *string    `json:"thumbnailUrl,omitempty" db:"thumbnail_url"`
	InstructorID    *int64     `json:"instructorId,omitempty" db:"instructor_id"`
	IsPublished     bool       `json:"isPublished" db:"is_published"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// VideoFilter narrows the video list
type VideoFilter struct {
	Search        string
	Category      string
	Difficulty    Difficulty
	PublishedOnly bool
}
