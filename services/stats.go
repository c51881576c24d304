package services

import (
	"codepath-backend/models"

	"gorm.io/gorm"
)

// UserStats is the snapshot the achievement evaluator compares thresholds
// against. Derived on demand, never stored.
type UserStats struct {
	LessonsCompleted  int64   `json:"lessons_completed"`
	QuizzesCompleted  int64   `json:"quizzes_completed"`
	PerfectQuizzes    int64   `json:"perfect_quizzes"`
	PackagesCompleted int64   `json:"packages_completed"`
	StudyHours        float64 `json:"study_hours"`
	CurrentStreak     int     `json:"current_streak"`
	TotalXP           int64   `json:"total_xp"`
}

// StatsProvider abstracts the aggregation queries behind one method per
// statistic category, so the evaluator never touches concrete tables.
type StatsProvider interface {
	LessonsCompleted(userID string) (int64, error)
	QuizzesCompleted(userID string) (int64, error)
	PerfectQuizzes(userID string) (int64, error)
	PackagesCompleted(userID string) (int64, error)
	StudyHours(userID string) (float64, error)
}

// ProgressStats aggregates from the progress/attempt/session tables.
type ProgressStats struct {
	DB *gorm.DB
}

func NewProgressStats(db *gorm.DB) *ProgressStats {
	return &ProgressStats{DB: db}
}

func (p *ProgressStats) LessonsCompleted(userID string) (int64, error) {
	var n int64
	err := p.DB.Model(&models.LessonProgress{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

// QuizzesCompleted counts distinct quizzes, not attempts; retrying a quiz
// does not inflate the statistic.
func (p *ProgressStats) QuizzesCompleted(userID string) (int64, error) {
	var n int64
	err := p.DB.Model(&models.QuizAttempt{}).
		Where("user_id = ?", userID).
		Distinct("quiz_id").
		Count(&n).Error
	return n, err
}

func (p *ProgressStats) PerfectQuizzes(userID string) (int64, error) {
	var n int64
	err := p.DB.Model(&models.QuizAttempt{}).
		Where("user_id = ? AND score >= 100", userID).
		Distinct("quiz_id").
		Count(&n).Error
	return n, err
}

func (p *ProgressStats) PackagesCompleted(userID string) (int64, error) {
	var n int64
	err := p.DB.Model(&models.PackageProgress{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (p *ProgressStats) StudyHours(userID string) (float64, error) {
	var seconds int64
	err := p.DB.Model(&models.StudySession{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Scan(&seconds).Error
	return float64(seconds) / 3600, err
}
