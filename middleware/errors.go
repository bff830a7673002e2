package middleware

import (
	"certdesk/services/certificate"

	"github.com/gofiber/fiber/v2"
)

// CertificateErrorResponse turns a certificate workflow error into the
// failure envelope with the matching status code. fallback replaces the
// message of storage failures.
func CertificateErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	return JsonResponse(c, certificate.HTTPStatus(err), false, certificate.PublicMessage(err, fallback), nil)
}
