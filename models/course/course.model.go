package course

import "gorm.io/gorm"

// Course is a training program. Prefix keys the certificate series and is
// not expected to change once certificates have been issued.
type Course struct {
	gorm.Model
	Name   string `json:"name" gorm:"not null"`
	Prefix string `json:"prefix" gorm:"size:16;uniqueIndex;not null"`
}
