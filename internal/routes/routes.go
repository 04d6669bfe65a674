package routes

import (
	"net/http"

	"github.com/technix/fittrack/internal/app"
	"github.com/technix/fittrack/internal/handler"
	"github.com/technix/fittrack/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.UserService, app.NotificationService)
	workout := handler.NewWorkoutHandler(app.WorkoutService, app.NotificationService)
	admin := handler.NewAdminHandler(app.UserService, app.WorkoutService, app.NotificationService)
	notification := handler.NewNotificationHandler(app.NotificationService)
	contact := handler.NewContactHandler(app.ContactService)
	plan := handler.NewPlanHandler(app.PlanService)

	// Auth gateway and role check, composed explicitly. Admin routes always
	// authenticate first, so an unauthenticated request reads as 401, not 403.
	requireAuth := middleware.RequireAuth(app.AuthService)
	requireAdmin := func(h http.HandlerFunc) http.HandlerFunc {
		return requireAuth(middleware.RequireAdmin(h))
	}

	// Credential and token endpoints share one brute-force budget per IP.
	rateLimiter := middleware.RateLimitAuth()

	mux := http.NewServeMux()

	// ============================================================================
	// AUTH
	// ============================================================================

	mux.HandleFunc("POST /api/user/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /api/user/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/user/logout", auth.Logout)
	mux.HandleFunc("POST /api/user/verify-email", rateLimiter(auth.VerifyEmail))
	mux.HandleFunc("POST /api/user/forgot-password", rateLimiter(auth.ForgotPassword))
	mux.HandleFunc("POST /api/user/reset-password/{token}", rateLimiter(auth.ResetPassword))

	mux.HandleFunc("GET /api/user/check-auth", requireAuth(auth.CheckAuth))
	mux.HandleFunc("GET /api/user/profile", requireAuth(auth.GetProfile))
	mux.HandleFunc("PUT /api/user/profile", requireAuth(auth.UpdateProfile))

	// ============================================================================
	// NOTIFICATIONS
	// ============================================================================

	mux.HandleFunc("GET /api/user/notifications", requireAuth(notification.List))
	mux.HandleFunc("PATCH /api/user/notifications/{id}/read", requireAuth(notification.MarkRead))
	mux.HandleFunc("DELETE /api/user/notifications/clear", requireAuth(notification.ClearRead))

	// ============================================================================
	// WORKOUTS
	// ============================================================================

	mux.HandleFunc("GET /api/workouts", requireAuth(workout.List))
	mux.HandleFunc("POST /api/workouts", requireAuth(workout.Create))
	mux.HandleFunc("GET /api/workouts/{id}", requireAuth(workout.Get))
	mux.HandleFunc("PATCH /api/workouts/{id}", requireAuth(workout.Update))
	mux.HandleFunc("DELETE /api/workouts/{id}", requireAuth(workout.Delete))

	// ============================================================================
	// ADMIN
	// ============================================================================

	mux.HandleFunc("GET /api/admin/users", requireAdmin(admin.ListUsers))
	mux.HandleFunc("POST /api/admin/users", requireAdmin(admin.CreateUser))
	mux.HandleFunc("PUT /api/admin/users/{id}", requireAdmin(admin.UpdateUser))
	mux.HandleFunc("DELETE /api/admin/users/{id}", requireAdmin(admin.DeleteUser))

	mux.HandleFunc("GET /api/admin/workouts", requireAdmin(admin.ListWorkouts))
	mux.HandleFunc("POST /api/admin/workouts", requireAdmin(admin.CreateWorkout))
	mux.HandleFunc("PUT /api/admin/workouts/{id}", requireAdmin(admin.UpdateWorkout))
	mux.HandleFunc("DELETE /api/admin/workouts/{id}", requireAdmin(admin.DeleteWorkout))

	// ============================================================================
	// CONTACT & PLAN GENERATION
	// ============================================================================

	mux.HandleFunc("POST /api/contact", contact.Submit)
	mux.HandleFunc("GET /api/contact", requireAdmin(contact.List))

	mux.HandleFunc("POST /api/generate-workout", requireAuth(plan.Generate))

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.RequestLogging,
	)

	return h
}
