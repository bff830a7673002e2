package certificateRoutes

import (
	controllers "certdesk/controllers/certificate"
	"certdesk/middleware"
	validators "certdesk/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

// SetupCertificateRoutes sets up certificate generation and lookup routes
func SetupCertificateRoutes(app *fiber.App, ctl *controllers.CertificateController) {
	certGroup := app.Group("/certificate", middleware.JWTMiddleware, middleware.CheckPermissionMiddleware(middleware.PermissionCertificates))

	certGroup.Post("/generate", validators.GenerateCertificate(), ctl.Generate)
	certGroup.Post("/generate/batch", validators.GenerateBatch(), ctl.GenerateBatch)
	certGroup.Get("/batch/:id", validators.GetBatch(), ctl.GetBatch)
	certGroup.Get("/lookup", validators.Lookup(), ctl.Lookup)
	certGroup.Get("/reconcile", ctl.Reconcile)
}
