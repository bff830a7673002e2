package enrollmentValidator

import (
	"certdesk/middleware"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultCertificateMessage is printed when a registration asks for a
// certificate without a message.
const DefaultCertificateMessage = "Kursni muvaffaqiyatli tamomlagani uchun"

// CertificateData asks for a certificate along with the registration. A
// missing date means today.
type CertificateData struct {
	Message           string    `json:"message"`
	AdditionalMessage string    `json:"additional_message"`
	Date              string    `json:"date" validate:"omitempty,isodate"`
	IssueDate         time.Time `json:"-"`
}

type RegisterRequest struct {
	FullName    string           `json:"full_name" validate:"required"`
	Passport    string           `json:"passport" validate:"required,alphanum"`
	Rank        string           `json:"rank"`
	Phone       string           `json:"phone"`
	CourseID    uint             `json:"course_id" validate:"required"`
	Department  string           `json:"department"`
	ExamResult  bool             `json:"exam_result"`
	Certificate *CertificateData `json:"certificate"`
}

type ExamResultItem struct {
	EnrollmentID uint `json:"enrollment_id" validate:"required"`
	ExamResult   bool `json:"exam_result"`
}

type ExamResultsRequest struct {
	Items []ExamResultItem `json:"items" validate:"required,min=1,max=1000,dive"`
}

func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RegisterRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.FullName = strings.TrimSpace(reqData.FullName)
		reqData.Passport = strings.ToUpper(strings.TrimSpace(reqData.Passport))
		reqData.Department = strings.TrimSpace(reqData.Department)

		if errors := middleware.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		if cert := reqData.Certificate; cert != nil {
			if strings.TrimSpace(cert.Message) == "" {
				cert.Message = DefaultCertificateMessage
			}
			cert.IssueDate = time.Now()
			if cert.Date != "" {
				cert.IssueDate, _ = middleware.ParseISODate(cert.Date)
			}
		}

		c.Locals("validatedRegister", reqData)
		return c.Next()
	}
}

func ByDate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &struct {
			Date string `query:"date" validate:"required,isodate"`
		}{Date: c.Query("date")}

		if errors := middleware.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		day, _ := middleware.ParseISODate(reqData.Date)
		c.Locals("date", day)
		return c.Next()
	}
}

func ExamResults() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ExamResultsRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedExamResults", reqData)
		return c.Next()
	}
}
