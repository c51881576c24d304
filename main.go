package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"codepath-backend/handlers"
	"codepath-backend/models"
	"codepath-backend/services"
	"codepath-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, enough for icon uploads
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	originsList := strings.Split(allowedOrigins, ",")
	for i, origin := range originsList {
		originsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(originsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// TranslateError lets us treat duplicate-key inserts (unlock races,
	// repeat completions) as gorm.ErrDuplicatedKey across drivers.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
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
		log.Fatal("failed to migrate database:", err)
	}

	if err := seedAchievements(db); err != nil {
		log.Fatal("failed to seed achievement catalog:", err)
	}

	if os.Getenv("R2_ACCOUNT_ID") != "" {
		if err := utils.InitAssetStorage(); err != nil {
			log.Fatal("failed to initialize asset storage:", err)
		}
	} else {
		log.Println("asset storage not configured, icon uploads disabled")
	}

	xpConfig := services.LoadXPConfig()
	notificationService := services.NewNotificationService(db)
	xpService := services.NewXPService(db, notificationService)
	streakService := services.NewStreakService(db, xpService, xpConfig)
	statsProvider := services.NewProgressStats(db)
	achievementService := services.NewAchievementService(db, xpService, statsProvider, notificationService)
	gamificationService := services.NewGamificationService(db, xpService, streakService, achievementService, xpConfig)

	cleanupService := services.NewCleanupService(db)
	cleanupService.StartMaintenanceScheduler()

	handlers.SetupAuthRoutes(app, db, gamificationService)
	handlers.SetupGamificationRoutes(app, gamificationService, xpService, achievementService)
	handlers.SetupPackageRoutes(app, db)
	handlers.SetupAdminAchievementRoutes(app, db)
	handlers.SetupNotificationRoutes(app, notificationService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5100"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	log.Printf("server running on http://localhost:%s", port)
	log.Printf("CORS configured for origins: %s", strings.Join(originsList, ","))

	<-ctx.Done()
	log.Println("shutting down server...")
	_ = app.Shutdown()
}

// seedAchievements inserts any catalog defaults that are not present yet,
// matched by code. Existing rows are left alone so admin edits survive
// restarts.
func seedAchievements(db *gorm.DB) error {
	for _, a := range models.DefaultAchievements {
		var count int64
		if err := db.Model(&models.Achievement{}).Where("code = ?", a.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		a.ID = uuid.NewString()
		if err := db.Create(&a).Error; err != nil {
			return err
		}
	}
	return nil
}
