package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"certdesk/models/course"
	"certdesk/services/certificate/certtest"
	enrollmentValidator "certdesk/validators/enrollment"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*fiber.App, *gorm.DB, course.Course) {
	t.Helper()
	db := certtest.DB(t)
	ctl := &EnrollmentController{DB: db, Certificates: certtest.Service(t, db, t.TempDir())}

	crs := course.Course{Name: "Fire Safety", Prefix: "FS"}
	require.NoError(t, db.Create(&crs).Error)

	app := fiber.New()
	app.Post("/enrollment/register", enrollmentValidator.Register(), ctl.Register)
	app.Get("/enrollment/by-date", enrollmentValidator.ByDate(), ctl.ByDate)
	app.Put("/enrollment/exam-results", enrollmentValidator.ExamResults(), ctl.ExamResults)
	return app, db, crs
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestRegisterWithCertificate(t *testing.T) {
	app, db, crs := setup(t)

	status, env := do(t, app, "POST", "/enrollment/register", fiber.Map{
		"full_name":   "Jasur Toshmatov",
		"passport":    "ab 7654321",
		"course_id":   crs.ID,
		"department":  "Buxoro",
		"exam_result": true,
		"certificate": fiber.Map{"message": "Kursni tamomladi", "date": "2024-05-02"},
	})
	require.Equal(t, fiber.StatusUnprocessableEntity, status, "passport with a space is rejected")

	status, env = do(t, app, "POST", "/enrollment/register", fiber.Map{
		"full_name":   "Jasur Toshmatov",
		"passport":    "ab7654321",
		"course_id":   crs.ID,
		"department":  "Buxoro",
		"exam_result": true,
		"certificate": fiber.Map{"message": "Kursni tamomladi", "date": "2024-05-02"},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"certificate_code":"FS 00001"`)

	var student course.Student
	require.NoError(t, db.Where("passport = ?", "AB7654321").First(&student).Error)
	var e course.Enrollment
	require.NoError(t, db.Where("student_id = ?", student.ID).First(&e).Error)
	assert.Equal(t, course.StatusIssued, e.Status())

	// Registering again reuses both records and regenerates with the same code.
	status, env = do(t, app, "POST", "/enrollment/register", fiber.Map{
		"full_name":   "Jasur Toshmatov",
		"passport":    "AB7654321",
		"course_id":   crs.ID,
		"department":  "Xiva",
		"exam_result": false,
		"certificate": fiber.Map{"date": "2024-05-03"},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.Contains(t, string(env.Data), `"certificate_code":"FS 00001"`)

	var count int64
	db.Model(&course.Enrollment{}).Count(&count)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.First(&e, e.ID).Error)
	assert.Equal(t, "Xiva", e.Department)
	assert.True(t, e.ExamResult, "issued certificate keeps the passed result")
}

func TestRegisterWithoutCertificateAndFailures(t *testing.T) {
	app, _, crs := setup(t)

	status, env := do(t, app, "POST", "/enrollment/register", fiber.Map{
		"full_name": "Malika Rustamova", "passport": "AC1000001", "course_id": crs.ID,
	})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.NotContains(t, string(env.Data), "certificate_code\":\"")

	status, env = do(t, app, "POST", "/enrollment/register", fiber.Map{
		"full_name": "Malika Rustamova", "passport": "AC1000001", "course_id": 999,
	})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Course not found!", env.Message)

}

func TestRegisterFailedExamSkipsCertificate(t *testing.T) {
	app, db, crs := setup(t)

	status, env := do(t, app, "POST", "/enrollment/register", fiber.Map{
		"full_name": "Malika Rustamova", "passport": "AC1000002", "course_id": crs.ID,
		"exam_result": false,
		"certificate": fiber.Map{"date": "2024-05-02"},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.True(t, env.Success)

	var data struct {
		Enrollment  course.Enrollment `json:"enrollment"`
		Certificate *json.RawMessage  `json:"certificate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Nil(t, data.Certificate)
	assert.False(t, data.Enrollment.ExamResult)

	var e course.Enrollment
	require.NoError(t, db.First(&e, data.Enrollment.ID).Error)
	assert.Equal(t, course.StatusNotEligible, e.Status())
	var counters int64
	db.Model(&course.CertificateCounter{}).Count(&counters)
	assert.Zero(t, counters, "no serial is taken")
}

func TestRegisterCertificateDefaults(t *testing.T) {
	app, _, crs := setup(t)

	status, env := do(t, app, "POST", "/enrollment/register", fiber.Map{
		"full_name": "Sardor Aliyev", "passport": "AC1000003", "course_id": crs.ID,
		"exam_result": true,
		"certificate": fiber.Map{},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.Contains(t, string(env.Data), `"certificate_code":"FS 00001"`)
}

func TestByDate(t *testing.T) {
	app, db, crs := setup(t)

	day := func(d int) time.Time { return time.Date(2024, 5, d, 10, 0, 0, 0, time.Local) }
	for i, d := range []int{1, 3, 3, 7} {
		s := course.Student{FullName: "Student", Passport: "AD100000" + string(rune('0'+i))}
		require.NoError(t, db.Create(&s).Error)
		require.NoError(t, db.Create(&course.Enrollment{StudentID: s.ID, CourseID: crs.ID, Model: gorm.Model{CreatedAt: day(d)}}).Error)
	}

	status, env := do(t, app, "GET", "/enrollment/by-date?date=2024-05-03", nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var data struct {
		Date     string  `json:"date"`
		Total    int     `json:"total"`
		PrevDate *string `json:"prev_date"`
		NextDate *string `json:"next_date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "2024-05-03", data.Date)
	assert.Equal(t, 2, data.Total)
	require.NotNil(t, data.PrevDate)
	require.NotNil(t, data.NextDate)
	assert.Equal(t, "2024-05-01", *data.PrevDate)
	assert.Equal(t, "2024-05-07", *data.NextDate)

	status, env = do(t, app, "GET", "/enrollment/by-date?date=2024-05-01", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Nil(t, data.PrevDate)

	status, _ = do(t, app, "GET", "/enrollment/by-date?date=yesterday", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestExamResultsCannotRevokeIssued(t *testing.T) {
	app, db, crs := setup(t)

	s1 := course.Student{FullName: "A", Passport: "AE0000001"}
	s2 := course.Student{FullName: "B", Passport: "AE0000002"}
	require.NoError(t, db.Create(&s1).Error)
	require.NoError(t, db.Create(&s2).Error)

	code, url := "FS 00001", "/certificates/FS00001.pdf"
	issued := course.Enrollment{StudentID: s1.ID, CourseID: crs.ID, ExamResult: true, CertificateCode: &code, CertificateURL: &url}
	pending := course.Enrollment{StudentID: s2.ID, CourseID: crs.ID}
	require.NoError(t, db.Create(&issued).Error)
	require.NoError(t, db.Create(&pending).Error)

	status, env := do(t, app, "PUT", "/enrollment/exam-results", fiber.Map{
		"items": []fiber.Map{
			{"enrollment_id": issued.ID, "exam_result": false},
			{"enrollment_id": pending.ID, "exam_result": true},
			{"enrollment_id": 777, "exam_result": true},
		},
	})
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var data struct {
		Updated int `json:"updated"`
		Results []struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Updated)
	require.Len(t, data.Results, 3)
	assert.False(t, data.Results[0].Success)
	assert.True(t, data.Results[1].Success)
	assert.Equal(t, "Enrollment not found!", data.Results[2].Message)

	var got course.Enrollment
	require.NoError(t, db.First(&got, issued.ID).Error)
	assert.True(t, got.ExamResult)
	require.NoError(t, db.First(&got, pending.ID).Error)
	assert.True(t, got.ExamResult)

	status, _ = do(t, app, "PUT", "/enrollment/exam-results", fiber.Map{"items": []fiber.Map{}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestExamResultsKeepRequestOrder(t *testing.T) {
	app, db, crs := setup(t)

	var ids []uint
	for _, passport := range []string{"AF0000001", "AF0000002", "AF0000003"} {
		s := course.Student{FullName: "Student", Passport: passport}
		require.NoError(t, db.Create(&s).Error)
		e := course.Enrollment{StudentID: s.ID, CourseID: crs.ID}
		require.NoError(t, db.Create(&e).Error)
		ids = append(ids, e.ID)
	}

	status, env := do(t, app, "PUT", "/enrollment/exam-results", fiber.Map{
		"items": []fiber.Map{
			{"enrollment_id": ids[2], "exam_result": true},
			{"enrollment_id": 999, "exam_result": true},
			{"enrollment_id": ids[0], "exam_result": true},
		},
	})
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var data struct {
		Updated int `json:"updated"`
		Results []struct {
			EnrollmentID uint `json:"enrollment_id"`
			Success      bool `json:"success"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Updated)
	require.Len(t, data.Results, 3)
	assert.Equal(t, []uint{ids[2], 999, ids[0]}, []uint{data.Results[0].EnrollmentID, data.Results[1].EnrollmentID, data.Results[2].EnrollmentID})
	assert.Equal(t, []bool{true, false, true}, []bool{data.Results[0].Success, data.Results[1].Success, data.Results[2].Success})

	var middle course.Enrollment
	require.NoError(t, db.First(&middle, ids[1]).Error)
	assert.False(t, middle.ExamResult)
}
