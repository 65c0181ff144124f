package routes

import (
	"updaily/backend/config"
	"updaily/backend/controllers"
	"updaily/backend/middleware"
	"updaily/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes mounts the API under /api/v1. sched may be nil when the
// scheduler is disabled.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, svc *services.Services, sched controllers.SchedulerStatus) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	api.Post("/auth/register", authController.Register)
	api.Post("/auth/login", authController.Login)
	api.Post("/auth/refresh", authController.Refresh)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db)

	// User routes
	userController := controllers.NewUserController(db, cfg, svc.Stats)
	users := api.Group("/users", authMiddleware)
	users.Get("/me", userController.GetProfile)
	users.Put("/me", userController.UpdateProfile)
	users.Delete("/me", userController.DeleteAccount)

	// Habit routes
	habitController := controllers.NewHabitController(db)
	habits := api.Group("/habits", authMiddleware)
	habits.Get("/", habitController.ListHabits)
	habits.Post("/", habitController.CreateHabit)
	habits.Get("/:id", habitController.GetHabit)
	habits.Put("/:id", habitController.UpdateHabit)
	habits.Delete("/:id", habitController.DeleteHabit)

	// Personal challenge routes
	challengeController := controllers.NewChallengeController(db)
	challenges := api.Group("/challenges", authMiddleware)
	challenges.Get("/", challengeController.ListChallenges)
	challenges.Post("/", challengeController.CreateChallenge)
	challenges.Get("/:id", challengeController.GetChallenge)
	challenges.Put("/:id", challengeController.UpdateChallenge)
	challenges.Delete("/:id", challengeController.DeleteChallenge)
	challenges.Post("/:id/progress", challengeController.AddProgress)

	// Progress routes
	progressController := controllers.NewProgressController(db, svc.Stats)
	progress := api.Group("/progress", authMiddleware)
	progress.Get("/", progressController.ListProgress)
	progress.Post("/", progressController.CreateProgress)
	progress.Get("/stats", progressController.GetProgressStats)
	progress.Get("/habit/:id", progressController.ByHabit)
	progress.Get("/challenge/:id", progressController.ByChallenge)
	progress.Get("/:id", progressController.GetRecord)
	progress.Put("/:id", progressController.UpdateRecord)
	progress.Delete("/:id", progressController.DeleteRecord)

	// Reto catalog routes
	retoController := controllers.NewRetoController(db)
	criterionController := controllers.NewCriterionController(db, svc.Criteria)
	rotationController := controllers.NewRotationController(svc)
	retos := api.Group("/retos", authMiddleware)
	retos.Get("/", retoController.ListRetos)
	retos.Get("/featured", rotationController.Featured)
	retos.Get("/:id", retoController.GetReto)
	retos.Get("/:id/criteria", criterionController.ListForReto)
	retos.Post("/", adminMiddleware, retoController.CreateReto)
	retos.Put("/:id", adminMiddleware, retoController.UpdateReto)
	retos.Delete("/:id", adminMiddleware, retoController.DeleteReto)

	criteria := api.Group("/criteria", authMiddleware, adminMiddleware)
	criteria.Post("/", criterionController.CreateCriterion)
	criteria.Put("/:id", criterionController.UpdateCriterion)
	criteria.Delete("/:id", criterionController.DeleteCriterion)

	// Enrollment routes
	enrollmentController := controllers.NewEnrollmentController(svc.Enrollments)
	enrollments := api.Group("/enrollments", authMiddleware)
	enrollments.Get("/", enrollmentController.ListEnrollments)
	enrollments.Post("/", enrollmentController.Enroll)
	enrollments.Put("/:id", enrollmentController.UpdateProgress)
	enrollments.Delete("/:id", enrollmentController.Abandon)

	// Daily assignment routes
	dailyController := controllers.NewDailyController(svc)
	daily := api.Group("/daily", authMiddleware)
	daily.Get("/", dailyController.ListDaily)
	daily.Get("/today", dailyController.Today)
	daily.Get("/stats", dailyController.UserStats)
	daily.Get("/stats/:category", dailyController.CategoryStats)
	daily.Get("/progress", dailyController.Progress)
	daily.Post("/generate", dailyController.Generate)
	daily.Post("/regenerate", dailyController.Regenerate)
	daily.Put("/:id", dailyController.UpdateDaily)
	daily.Delete("/:id", dailyController.DeleteDaily)
	daily.Post("/:id/complete", dailyController.CompleteDaily)
	daily.Get("/:id/criteria", criterionController.ForAssignment)
	daily.Post("/:id/criteria/:criterionId/complete", criterionController.Complete)

	// Achievement routes
	achievementController := controllers.NewAchievementController(svc.Achievements)
	achievements := api.Group("/achievements", authMiddleware)
	achievements.Get("/", achievementController.ListAchievements)
	achievements.Get("/:id", achievementController.GetAchievement)
	achievements.Post("/assignment/:id", achievementController.CreateForAssignment)

	// Template routes
	templateController := controllers.NewTemplateController(db)
	templates := api.Group("/templates", authMiddleware)
	templates.Get("/", templateController.ListTemplates)
	templates.Post("/", adminMiddleware, templateController.CreateTemplate)
	templates.Put("/:id", adminMiddleware, templateController.UpdateTemplate)
	templates.Delete("/:id", adminMiddleware, templateController.DeleteTemplate)

	// Admin routes
	adminController := controllers.NewAdminController(db, svc, sched)
	admin := api.Group("/admin", authMiddleware, adminMiddleware)
	admin.Post("/generate", adminController.GenerateAll)
	admin.Post("/cleanup", adminController.Cleanup)
	admin.Get("/scheduler", adminController.SchedulerStatus)
	admin.Get("/users/:id/activity", adminController.UserActivity)
	admin.Post("/retos/rotate", rotationController.Rotate)
	admin.Post("/achievements", achievementController.AwardAchievement)
	admin.Put("/achievements/:id", achievementController.UpdateAchievement)
	admin.Delete("/achievements/:id", achievementController.DeleteAchievement)
}
