package controllers

import (
	"errors"
	"log"
	"sort"
	"time"

	"certdesk/middleware"
	"certdesk/models/course"
	"certdesk/services/certificate"
	enrollmentValidator "certdesk/validators/enrollment"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentController registers students on courses and records exam results.
type EnrollmentController struct {
	DB           *gorm.DB
	Certificates *certificate.Service
}

var errCourseNotFound = errors.New("course not found")

// Register finds or creates the student by passport and their enrollment on
// the course. When certificate data is sent the certificate is generated too.
func (ctl *EnrollmentController) Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*enrollmentValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var enrollment course.Enrollment
	err := ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var crs course.Course
		if err := tx.First(&crs, reqData.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errCourseNotFound
			}
			return err
		}

		var student course.Student
		if err := tx.Where(course.Student{Passport: reqData.Passport}).
			Attrs(course.Student{FullName: reqData.FullName, Rank: reqData.Rank, Phone: reqData.Phone}).
			FirstOrCreate(&student).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(course.Enrollment{StudentID: student.ID, CourseID: crs.ID}).
			Attrs(course.Enrollment{Department: reqData.Department, ExamResult: reqData.ExamResult}).
			FirstOrCreate(&enrollment).Error; err != nil {
			return err
		}

		// Existing enrollment: refresh department and result, but an issued
		// certificate keeps its passed result.
		updates := map[string]interface{}{"department": reqData.Department}
		enrollment.Department = reqData.Department
		if enrollment.Status() != course.StatusIssued {
			updates["exam_result"] = reqData.ExamResult
			enrollment.ExamResult = reqData.ExamResult
		}
		return tx.Model(&enrollment).Updates(updates).Error
	})
	if errors.Is(err, errCourseNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if err != nil {
		log.Printf("[ENROLLMENT] Register %s: %v", reqData.Passport, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register student!", nil)
	}

	// A certificate is only generated for a passed exam; otherwise the
	// registration alone succeeds.
	if reqData.Certificate == nil || !enrollment.ExamResult {
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Student registered successfully!", fiber.Map{
			"enrollment":  enrollment,
			"certificate": nil,
		})
	}

	issued, err := ctl.Certificates.Generate(c.UserContext(), certificate.GenerateInput{
		EnrollmentID:      enrollment.ID,
		Message:           reqData.Certificate.Message,
		AdditionalMessage: reqData.Certificate.AdditionalMessage,
		IssueDate:         reqData.Certificate.IssueDate,
	})
	if err != nil {
		return middleware.CertificateErrorResponse(c, err, "Student registered, but the certificate could not be generated!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Student registered and certificate generated successfully!", fiber.Map{
		"enrollment":  enrollment,
		"certificate": issued,
	})
}

// ByDate lists enrollments created on one day, with the nearest earlier and
// later days that have enrollments.
func (ctl *EnrollmentController) ByDate(c *fiber.Ctx) error {
	day, ok := c.Locals("date").(time.Time)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid date!", nil)
	}

	db := ctl.DB.WithContext(c.UserContext())
	begin := now.With(day).BeginningOfDay()
	end := now.With(day).EndOfDay()

	var enrollments []course.Enrollment
	if err := db.Preload("Student").Preload("Course").
		Where("created_at BETWEEN ? AND ?", begin, end).
		Order("created_at asc").
		Find(&enrollments).Error; err != nil {
		log.Printf("[ENROLLMENT] List by date %s: %v", begin.Format("2006-01-02"), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	var prev, next course.Enrollment
	if err := db.Where("created_at < ?", begin).Order("created_at desc").Limit(1).Find(&prev).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}
	if err := db.Where("created_at > ?", end).Order("created_at asc").Limit(1).Find(&next).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"date":        begin.Format("2006-01-02"),
		"enrollments": enrollments,
		"total":       len(enrollments),
		"prev_date":   dayOf(prev),
		"next_date":   dayOf(next),
	})
}

func dayOf(e course.Enrollment) *string {
	if e.ID == 0 {
		return nil
	}
	d := e.CreatedAt.In(time.Local).Format("2006-01-02")
	return &d
}

type examResultOutcome struct {
	EnrollmentID uint   `json:"enrollment_id"`
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
}

// ExamResults sets exam results in bulk. Items that cannot be applied are
// reported; the rest are saved in one transaction. A result cannot be set to
// failed once a certificate has been issued.
func (ctl *EnrollmentController) ExamResults(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedExamResults").(*enrollmentValidator.ExamResultsRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	outcomes := make([]examResultOutcome, len(reqData.Items))

	// Rows are locked in id order so concurrent bulk updates cannot deadlock.
	order := make([]int, len(reqData.Items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return reqData.Items[order[a]].EnrollmentID < reqData.Items[order[b]].EnrollmentID
	})

	err := ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		for _, i := range order {
			item := reqData.Items[i]
			outcomes[i] = examResultOutcome{EnrollmentID: item.EnrollmentID}

			var enrollment course.Enrollment
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&enrollment, item.EnrollmentID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcomes[i].Message = "Enrollment not found!"
				continue
			}
			if err != nil {
				return err
			}

			if enrollment.Status() == course.StatusIssued && !item.ExamResult {
				outcomes[i].Message = "Certificate already issued; exam result cannot be revoked!"
				continue
			}

			if err := tx.Model(&enrollment).Update("exam_result", item.ExamResult).Error; err != nil {
				return err
			}
			outcomes[i].Success = true
		}
		return nil
	})
	if err != nil {
		log.Printf("[ENROLLMENT] Bulk exam results: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update exam results!", nil)
	}

	updated := 0
	for _, o := range outcomes {
		if o.Success {
			updated++
		}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam results updated!", fiber.Map{
		"updated": updated,
		"results": outcomes,
	})
}
