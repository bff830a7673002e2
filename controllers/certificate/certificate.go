package controllers

import (
	"certdesk/middleware"
	"certdesk/services/certificate"
	certificateValidator "certdesk/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

// CertificateController serves certificate generation and lookup.
type CertificateController struct {
	Service *certificate.Service
}

// Generate issues, or regenerates, the certificate of one enrollment.
func (ctl *CertificateController) Generate(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedGenerate").(*certificateValidator.GenerateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	issued, err := ctl.Service.Generate(c.UserContext(), certificate.GenerateInput{
		EnrollmentID:      reqData.EnrollmentID,
		Message:           reqData.Message,
		AdditionalMessage: reqData.AdditionalMessage,
		IssueDate:         reqData.IssueDate,
	})
	if err != nil {
		return middleware.CertificateErrorResponse(c, err, "Failed to generate certificate!")
	}

	message := "Certificate generated successfully!"
	if issued.Regenerated {
		message = "Certificate regenerated successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, issued)
}

// GenerateBatch attempts every listed enrollment and reports each outcome.
func (ctl *CertificateController) GenerateBatch(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBatch").(*certificateValidator.BatchRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	userID, _ := c.Locals("userId").(string)
	result, err := ctl.Service.GenerateBatch(c.UserContext(), certificate.BatchInput{
		EnrollmentIDs:     reqData.EnrollmentIDs,
		Message:           reqData.Message,
		AdditionalMessage: reqData.AdditionalMessage,
		IssueDate:         reqData.IssueDate,
		RequestedBy:       userID,
	})
	if err != nil && result == nil {
		return middleware.CertificateErrorResponse(c, err, "Failed to generate certificates!")
	}

	// The batch itself may fail to save after items were processed; results are still returned.
	message := "Batch processed!"
	if err != nil {
		message = "Batch processed, but its record could not be saved!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

func (ctl *CertificateController) GetBatch(c *fiber.Ctx) error {
	id, _ := c.Locals("batchID").(string)

	result, err := ctl.Service.GetBatch(c.UserContext(), id)
	if err != nil {
		return middleware.CertificateErrorResponse(c, err, "Failed to fetch batch!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch fetched successfully!", result)
}

// Lookup lists the certificates held by the student with the given passport.
func (ctl *CertificateController) Lookup(c *fiber.Ctx) error {
	passport, _ := c.Locals("passport").(string)

	holder, err := ctl.Service.LookupByPassport(c.UserContext(), passport)
	if err != nil {
		return middleware.CertificateErrorResponse(c, err, "Failed to fetch certificates!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", holder)
}

func (ctl *CertificateController) Reconcile(c *fiber.Ctx) error {
	report, err := ctl.Service.Reconcile(c.UserContext())
	if err != nil {
		return middleware.CertificateErrorResponse(c, err, "Failed to reconcile certificates!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reconciliation completed!", report)
}
