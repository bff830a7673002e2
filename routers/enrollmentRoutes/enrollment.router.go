package enrollmentRoutes

import (
	controllers "certdesk/controllers/enrollment"
	"certdesk/middleware"
	validators "certdesk/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

// SetupEnrollmentRoutes sets up student registration and exam result routes
func SetupEnrollmentRoutes(app *fiber.App, ctl *controllers.EnrollmentController) {
	enrollGroup := app.Group("/enrollment", middleware.JWTMiddleware, middleware.CheckPermissionMiddleware(middleware.PermissionCertificates))

	enrollGroup.Post("/register", validators.Register(), ctl.Register)
	enrollGroup.Get("/by-date", validators.ByDate(), ctl.ByDate)
	enrollGroup.Put("/exam-results", validators.ExamResults(), ctl.ExamResults)
}
