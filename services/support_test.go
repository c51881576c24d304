package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"codepath-backend/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a per-test in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.XPHistory{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.TechPackage{},
		&models.Lesson{},
		&models.Quiz{},
		&models.LessonProgress{},
		&models.QuizAttempt{},
		&models.PackageProgress{},
		&models.StudySession{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type testStack struct {
	db            *gorm.DB
	notifications *NotificationService
	xp            *XPService
	streak        *StreakService
	stats         *ProgressStats
	achievements  *AchievementService
	gamification  *GamificationService
	cfg           XPConfig
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db := setupTestDB(t)
	cfg := DefaultXPConfig
	notifications := NewNotificationService(db)
	xp := NewXPService(db, notifications)
	streak := NewStreakService(db, xp, cfg)
	stats := NewProgressStats(db)
	achievements := NewAchievementService(db, xp, stats, notifications)
	gamification := NewGamificationService(db, xp, streak, achievements, cfg)

	return &testStack{
		db:            db,
		notifications: notifications,
		xp:            xp,
		streak:        streak,
		stats:         stats,
		achievements:  achievements,
		gamification:  gamification,
		cfg:           cfg,
	}
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	id := uuid.NewString()
	user := models.User{
		ID:           id,
		Username:     "user-" + id[:8],
		Email:        id[:8] + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func createAchievement(t *testing.T, db *gorm.DB, code string, kind models.RequirementType, value float64, reward int64) models.Achievement {
	t.Helper()

	a := models.Achievement{
		ID:               uuid.NewString(),
		Code:             code,
		Name:             code,
		Category:         models.CategoryProgress,
		RequirementType:  kind,
		RequirementValue: value,
		XPReward:         reward,
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("create achievement %s: %v", code, err)
	}
	return a
}

func createLesson(t *testing.T, db *gorm.DB) models.Lesson {
	t.Helper()

	pkg := models.TechPackage{
		ID:   uuid.NewString(),
		Name: "pkg-" + uuid.NewString()[:8],
		Slug: "pkg-" + uuid.NewString()[:8],
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("create package: %v", err)
	}
	lesson := models.Lesson{ID: uuid.NewString(), PackageID: pkg.ID, Title: "lesson"}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return lesson
}

func createQuiz(t *testing.T, db *gorm.DB) models.Quiz {
	t.Helper()

	pkg := models.TechPackage{
		ID:   uuid.NewString(),
		Name: "pkg-" + uuid.NewString()[:8],
		Slug: "pkg-" + uuid.NewString()[:8],
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("create package: %v", err)
	}
	quiz := models.Quiz{ID: uuid.NewString(), PackageID: pkg.ID, Title: "quiz"}
	if err := db.Create(&quiz).Error; err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return quiz
}

func createPackage(t *testing.T, db *gorm.DB) models.TechPackage {
	t.Helper()

	pkg := models.TechPackage{
		ID:   uuid.NewString(),
		Name: "pkg-" + uuid.NewString()[:8],
		Slug: "pkg-" + uuid.NewString()[:8],
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("create package: %v", err)
	}
	return pkg
}

// completeLessons inserts n finished-lesson rows directly, bypassing XP.
func completeLessons(t *testing.T, db *gorm.DB, userID string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		lesson := createLesson(t, db)
		progress := models.LessonProgress{ID: uuid.NewString(), UserID: userID, LessonID: lesson.ID}
		if err := db.Create(&progress).Error; err != nil {
			t.Fatalf("create lesson progress: %v", err)
		}
	}
}

func dayUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
