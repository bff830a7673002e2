package course

import "gorm.io/gorm"

// Student is identified by passport; the passport never changes after creation.
type Student struct {
	gorm.Model
	FullName    string       `json:"full_name" gorm:"not null"`
	Passport    string       `json:"passport" gorm:"size:32;uniqueIndex;not null"`
	Rank        string       `json:"rank"`
	Phone       string       `json:"phone"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:StudentID"`
}
