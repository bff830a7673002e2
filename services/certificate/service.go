package certificate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"certdesk/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configure a Service.
type Options struct {
	PublicBaseURL    string
	CourseLabel      string
	Layout           Layout
	AssetNames       AssetNames
	BatchConcurrency int
}

// Service issues certificates. Every entry point that produces a
// certificate goes through Generate.
type Service struct {
	db        *gorm.DB
	assets    AssetStore
	files     FileStore
	allocator *Allocator
	committer *Committer
	composer  *Composer
	qr        QRBuilder
	opts      Options
}

func NewService(db *gorm.DB, assets AssetStore, files FileStore, opts Options) (*Service, error) {
	if err := opts.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid certificate layout: %w", err)
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 1
	}

	allocator := NewAllocator()
	return &Service{
		db:        db,
		assets:    assets,
		files:     files,
		allocator: allocator,
		committer: &Committer{Files: files, Allocator: allocator},
		composer:  &Composer{Layout: opts.Layout},
		qr:        QRBuilder{BaseURL: opts.PublicBaseURL},
		opts:      opts,
	}, nil
}

type GenerateInput struct {
	EnrollmentID      uint
	Message           string
	AdditionalMessage string
	IssueDate         time.Time
}

// Issued describes a successfully generated certificate.
type Issued struct {
	EnrollmentID    uint   `json:"enrollment_id"`
	CertificateCode string `json:"certificate_code"`
	CertificateURL  string `json:"certificate_url"`
	VerificationURL string `json:"verification_url"`
	Regenerated     bool   `json:"regenerated"`
}

// Generate renders and stores the certificate for one enrollment. A first
// issue takes the next serial of the course prefix; a regeneration keeps the
// code the enrollment already has and overwrites its file.
//
// Once started, generation is not cancelled by ctx.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*Issued, error) {
	ctx = context.WithoutCancel(ctx)

	var enrollment course.Enrollment
	err := s.db.WithContext(ctx).Preload("Student").Preload("Course").First(&enrollment, in.EnrollmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "Enrollment not found!", err)
	}
	if err != nil {
		return nil, storageError("load enrollment", err)
	}
	if enrollment.Course.ID == 0 {
		return nil, newError(KindNotFound, "Course not found!", nil)
	}
	if enrollment.Student.ID == 0 {
		return nil, newError(KindNotFound, "Student not found!", nil)
	}
	if !enrollment.ExamResult {
		return nil, newError(KindExamNotPassed, "Student has not passed the exam!", nil)
	}

	assets, err := LoadAssets(ctx, s.assets, s.opts.AssetNames)
	if err != nil {
		return nil, err
	}

	issueDate := in.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	prefix := enrollment.Course.Prefix
	unlock := s.allocator.Lock(prefix)
	defer unlock()

	var issued *Issued
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-read under lock: a concurrent request may have issued this one already.
		var current course.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, enrollment.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "Enrollment not found!", err)
			}
			return storageError("lock enrollment", err)
		}
		if !current.ExamResult {
			return newError(KindExamNotPassed, "Student has not passed the exam!", nil)
		}

		var (
			code        string
			reservation *Reservation
		)
		regenerated := current.CertificateCode != nil && *current.CertificateCode != ""
		if regenerated {
			code = *current.CertificateCode
		} else {
			r, err := s.allocator.Reserve(tx, prefix)
			if err != nil {
				return err
			}
			reservation = &r
			code = Compose(prefix, r.Serial)
		}

		if err := ensureUnique(tx, code, current.ID); err != nil {
			return err
		}

		pdf, err := s.render(assets, Fields{
			FullName:          enrollment.Student.FullName,
			CourseLabel:       s.opts.CourseLabel,
			Code:              code,
			Serial:            SerialSuffix(code),
			IssueDate:         issueDate,
			Message:           in.Message,
			AdditionalMessage: in.AdditionalMessage,
		})
		if err != nil {
			return err
		}

		publicPath, err := s.committer.Commit(tx, &current, code, reservation, pdf)
		if err != nil {
			return err
		}

		issued = &Issued{
			EnrollmentID:    current.ID,
			CertificateCode: code,
			CertificateURL:  publicPath,
			VerificationURL: s.qr.VerificationURL(code),
			Regenerated:     regenerated,
		}
		return nil
	})
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			err = storageError("commit certificate", err)
		}
		log.Printf("[CERTIFICATE] Enrollment %d: %v", in.EnrollmentID, err)
		return nil, err
	}

	if issued.Regenerated {
		log.Printf("[CERTIFICATE] Regenerated %s for enrollment %d", issued.CertificateCode, issued.EnrollmentID)
	} else {
		log.Printf("[CERTIFICATE] Issued %s for enrollment %d", issued.CertificateCode, issued.EnrollmentID)
	}
	return issued, nil
}

func (s *Service) render(assets Assets, f Fields) ([]byte, error) {
	png, err := s.qr.PNG(f.Code)
	if err != nil {
		return nil, storageError("encode QR code", err)
	}
	f.QR = png

	canvas, err := newPDFCanvas(assets)
	if err != nil {
		return nil, err
	}
	if err := s.composer.Compose(canvas, f); err != nil {
		return nil, newError(KindTemplateAssetMissing, "Certificate could not be rendered with the configured template!", err)
	}
	pdf, err := canvas.Bytes()
	if err != nil {
		return nil, storageError("write PDF", err)
	}
	return pdf, nil
}
