package certificate

import (
	"context"
	"errors"
	"strings"
	"time"

	"certdesk/models/course"

	"gorm.io/gorm"
)

type HeldCertificate struct {
	EnrollmentID    uint      `json:"enrollment_id"`
	CourseName      string    `json:"course_name"`
	Department      string    `json:"department"`
	CertificateCode string    `json:"certificate_code"`
	CertificateURL  string    `json:"certificate_url"`
	IssuedAt        time.Time `json:"issued_at"`
}

type Holder struct {
	Student      course.Student    `json:"student"`
	Certificates []HeldCertificate `json:"certificates"`
}

// LookupByPassport returns a student and the certificates issued to them,
// most recent first.
func (s *Service) LookupByPassport(ctx context.Context, passport string) (*Holder, error) {
	passport = strings.TrimSpace(passport)

	var student course.Student
	err := s.db.WithContext(ctx).Where("passport = ?", passport).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "No student with this passport!", err)
	}
	if err != nil {
		return nil, storageError("load student", err)
	}

	var enrollments []course.Enrollment
	if err := s.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ? AND certificate_code IS NOT NULL AND certificate_url IS NOT NULL", student.ID).
		Order("updated_at desc").
		Find(&enrollments).Error; err != nil {
		return nil, storageError("load certificates", err)
	}

	holder := &Holder{Student: student, Certificates: make([]HeldCertificate, 0, len(enrollments))}
	for _, e := range enrollments {
		holder.Certificates = append(holder.Certificates, HeldCertificate{
			EnrollmentID:    e.ID,
			CourseName:      e.Course.Name,
			Department:      e.Department,
			CertificateCode: *e.CertificateCode,
			CertificateURL:  *e.CertificateURL,
			IssuedAt:        e.UpdatedAt,
		})
	}
	return holder, nil
}
