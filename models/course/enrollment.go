package course

import "gorm.io/gorm"

// CertificateStatus is derived from the exam result and certificate fields.
type CertificateStatus string

const (
	StatusNotEligible CertificateStatus = "NOT_ELIGIBLE"
	StatusEligible    CertificateStatus = "ELIGIBLE"
	StatusIssued      CertificateStatus = "ISSUED"
)

// Enrollment joins a student to a course and carries the exam outcome and
// certificate state. CertificateCode and CertificateURL are set together.
type Enrollment struct {
	gorm.Model
	StudentID       uint    `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID        uint    `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	Department      string  `json:"department"`
	ExamResult      bool    `json:"exam_result" gorm:"default:false"`
	CertificateCode *string `json:"certificate_code" gorm:"size:64;uniqueIndex"`
	CertificateURL  *string `json:"certificate_url"`
	Student         Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course          Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (e *Enrollment) Status() CertificateStatus {
	switch {
	case e.CertificateCode != nil && e.CertificateURL != nil:
		return StatusIssued
	case e.ExamResult:
		return StatusEligible
	default:
		return StatusNotEligible
	}
}
