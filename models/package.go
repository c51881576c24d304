package models

import "time"

// TechPackage is a technology track (e.g., "Go Fundamentals") composed of
// ordered lessons and quizzes.
type TechPackage struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	IconURL     string `gorm:"type:text" json:"icon_url"`
	Published   bool   `gorm:"default:false;index" json:"published"`

	Lessons []Lesson `gorm:"foreignKey:PackageID" json:"lessons,omitempty"`
	Quizzes []Quiz   `gorm:"foreignKey:PackageID" json:"quizzes,omitempty"`

	Timestamps
}

type Lesson struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	PackageID string `gorm:"index;not null" json:"package_id"`
	Title     string `gorm:"not null" json:"title"`
	Position  int    `gorm:"not null;default:0" json:"position"`
	Content   string `gorm:"type:text" json:"content,omitempty"`

	Timestamps
}

type Quiz struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	PackageID string `gorm:"index;not null" json:"package_id"`
	Title     string `gorm:"not null" json:"title"`
	Position  int    `gorm:"not null;default:0" json:"position"`

	Timestamps
}

// LessonProgress marks a lesson as completed by a user, once.
type LessonProgress struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"not null;uniqueIndex:idx_user_lesson" json:"user_id"`
	LessonID    string    `gorm:"not null;uniqueIndex:idx_user_lesson" json:"lesson_id"`
	CompletedAt time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

// QuizAttempt records every quiz completion; repeat attempts are expected.
type QuizAttempt struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID           string    `gorm:"index;not null" json:"user_id"`
	QuizID           string    `gorm:"index;not null" json:"quiz_id"`
	Score            int       `gorm:"not null" json:"score"` // percent, 0-100
	TimeSpentSeconds int       `gorm:"default:0" json:"time_spent_seconds"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PackageProgress marks a whole package as completed by a user, once.
type PackageProgress struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"not null;uniqueIndex:idx_user_package" json:"user_id"`
	PackageID   string    `gorm:"not null;uniqueIndex:idx_user_package" json:"package_id"`
	CompletedAt time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

// StudySession accumulates rough time-on-platform, fed by client heartbeats.
// Sessions are closed by the heartbeat handler or the cleanup job.
type StudySession struct {
	ID              string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string     `gorm:"index;not null" json:"user_id"`
	StartedAt       time.Time  `gorm:"autoCreateTime" json:"started_at"`
	LastSeenAt      time.Time  `json:"last_seen_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds int        `gorm:"default:0" json:"duration_seconds"`
}
