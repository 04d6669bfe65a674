package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/technix/fittrack/internal/config"
	"github.com/technix/fittrack/internal/db"
	"github.com/technix/fittrack/internal/repository"
	"github.com/technix/fittrack/internal/service"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	AuthService         *service.AuthService
	UserService         *service.UserService
	EmailService        *service.EmailService
	WorkoutService      *service.WorkoutService
	NotificationService *service.NotificationService
	ContactService      *service.ContactService
	PlanService         *service.PlanService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	workoutRepository := repository.NewWorkoutRepository(database)
	notificationRepository := repository.NewNotificationRepository(database)
	contactRepository := repository.NewContactRepository(database)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.ClientURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.TokenEmailVerifyExpiry,
		cfg.TokenPasswordResetExpiry,
	)
	userService := service.NewUserService(userRepository, authService)
	workoutService := service.NewWorkoutService(workoutRepository)
	notificationService := service.NewNotificationService(notificationRepository)
	contactService := service.NewContactService(contactRepository)
	planService := service.NewPlanService(cfg.OpenAIAPIKey)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		AuthService:         authService,
		UserService:         userService,
		EmailService:        emailService,
		WorkoutService:      workoutService,
		NotificationService: notificationService,
		ContactService:      contactService,
		PlanService:         planService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
