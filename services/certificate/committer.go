package certificate

import (
	"errors"

	"certdesk/models/course"

	"gorm.io/gorm"
)

// Committer writes a rendered certificate and records it on the enrollment.
// It is the only writer of the enrollment certificate fields.
type Committer struct {
	Files     FileStore
	Allocator *Allocator
}

// Commit runs inside the transaction that holds the prefix lock. The file is
// written first and replaces any earlier file for the same code; the counter
// increment (first issue only) and the enrollment update follow and become
// visible when tx commits. A failure after the file write leaves an orphan
// file, which reconciliation reports.
func (c *Committer) Commit(tx *gorm.DB, enrollment *course.Enrollment, code string, reservation *Reservation, pdf []byte) (string, error) {
	publicPath, err := c.Files.Write(FileName(code), pdf)
	if err != nil {
		return "", storageError("write certificate file", err)
	}

	if reservation != nil {
		if err := c.Allocator.Commit(tx, *reservation); err != nil {
			return "", err
		}
	}

	err = tx.Model(enrollment).Updates(map[string]interface{}{
		"certificate_code": code,
		"certificate_url":  publicPath,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", newError(KindDuplicateCertificateNumber, "Certificate number "+code+" is already assigned to another enrollment!", err)
	}
	if err != nil {
		return "", storageError("update enrollment certificate", err)
	}

	enrollment.CertificateCode = &code
	enrollment.CertificateURL = &publicPath
	return publicPath, nil
}
