package certificateValidator

import (
	"certdesk/middleware"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type GenerateRequest struct {
	EnrollmentID      uint      `json:"enrollment_id" validate:"required"`
	Message           string    `json:"message"`
	AdditionalMessage string    `json:"additional_message"`
	Date              string    `json:"date" validate:"required,isodate"`
	IssueDate         time.Time `json:"-"`
}

type BatchRequest struct {
	EnrollmentIDs     []uint    `json:"enrollment_ids" validate:"required,min=1,max=500,unique,dive,gt=0"`
	Message           string    `json:"message"`
	AdditionalMessage string    `json:"additional_message"`
	Date              string    `json:"date" validate:"required,isodate"`
	IssueDate         time.Time `json:"-"`
}

func GenerateCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GenerateRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.IssueDate, _ = middleware.ParseISODate(reqData.Date)

		c.Locals("validatedGenerate", reqData)
		return c.Next()
	}
}

func GenerateBatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BatchRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.IssueDate, _ = middleware.ParseISODate(reqData.Date)

		c.Locals("validatedBatch", reqData)
		return c.Next()
	}
}

func GetBatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &struct {
			ID string `json:"id" validate:"required,uuid"`
		}{ID: c.Params("id")}

		if errors := middleware.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("batchID", reqData.ID)
		return c.Next()
	}
}

func Lookup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		passport := strings.ToUpper(strings.TrimSpace(c.Query("passport")))

		errors := make(map[string]string)
		if passport == "" {
			errors["passport"] = "Passport is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("passport", passport)
		return c.Next()
	}
}
