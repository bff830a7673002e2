package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CertificateCounter holds the last serial handed out for a course prefix.
// LastCount only moves forward.
type CertificateCounter struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Prefix    string    `json:"prefix" gorm:"size:16;uniqueIndex;not null"`
	LastCount int       `json:"last_count" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CertificateBatch records the outcome of one batch generation request.
type CertificateBatch struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	RequestedBy string         `json:"requested_by"`
	Total       int            `json:"total"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
	Results     datatypes.JSON `json:"results"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (b *CertificateBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
