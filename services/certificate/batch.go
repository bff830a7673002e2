package certificate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"certdesk/models/course"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BatchInput struct {
	EnrollmentIDs     []uint
	Message           string
	AdditionalMessage string
	IssueDate         time.Time
	RequestedBy       string
}

// ItemResult is the outcome of one enrollment in a batch: either a
// certificate location or an error kind with its message.
type ItemResult struct {
	EnrollmentID    uint   `json:"enrollment_id"`
	Success         bool   `json:"success"`
	CertificateCode string `json:"certificate_code,omitempty"`
	CertificateURL  string `json:"certificate_url,omitempty"`
	ErrorKind       Kind   `json:"error_kind,omitempty"`
	Message         string `json:"message,omitempty"`
}

type BatchResult struct {
	ID        string       `json:"batch_id"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []ItemResult `json:"results"`
	CreatedAt time.Time    `json:"created_at"`
}

// GenerateBatch attempts every enrollment independently, at most
// BatchConcurrency at a time. A failed item never stops the others. Results
// keep the input order and are stored so the batch can be fetched later.
func (s *Service) GenerateBatch(ctx context.Context, in BatchInput) (*BatchResult, error) {
	ctx = context.WithoutCancel(ctx)
	results := make([]ItemResult, len(in.EnrollmentIDs))

	var g errgroup.Group
	g.SetLimit(s.opts.BatchConcurrency)
	for i, id := range in.EnrollmentIDs {
		i, id := i, id
		g.Go(func() error {
			issued, err := s.Generate(ctx, GenerateInput{
				EnrollmentID:      id,
				Message:           in.Message,
				AdditionalMessage: in.AdditionalMessage,
				IssueDate:         in.IssueDate,
			})
			if err != nil {
				results[i] = ItemResult{EnrollmentID: id, ErrorKind: KindOf(err), Message: PublicMessage(err, "Failed to generate certificate!")}
				return nil
			}
			results[i] = ItemResult{
				EnrollmentID:    id,
				Success:         true,
				CertificateCode: issued.CertificateCode,
				CertificateURL:  issued.CertificateURL,
			}
			return nil
		})
	}
	_ = g.Wait()

	out := &BatchResult{Total: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}

	raw, err := json.Marshal(results)
	if err != nil {
		return nil, storageError("encode batch results", err)
	}
	batch := course.CertificateBatch{
		RequestedBy: in.RequestedBy,
		Total:       out.Total,
		Succeeded:   out.Succeeded,
		Failed:      out.Failed,
		Results:     datatypes.JSON(raw),
	}
	if err := s.db.WithContext(ctx).Create(&batch).Error; err != nil {
		// Items are already committed; the caller still gets every result.
		return out, storageError("save certificate batch", err)
	}
	out.ID = batch.ID
	out.CreatedAt = batch.CreatedAt
	return out, nil
}

// GetBatch returns a stored batch result.
func (s *Service) GetBatch(ctx context.Context, id string) (*BatchResult, error) {
	var batch course.CertificateBatch
	err := s.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "Batch not found!", err)
	}
	if err != nil {
		return nil, storageError("load certificate batch", err)
	}

	out := &BatchResult{
		ID:        batch.ID,
		Total:     batch.Total,
		Succeeded: batch.Succeeded,
		Failed:    batch.Failed,
		CreatedAt: batch.CreatedAt,
	}
	if len(batch.Results) > 0 {
		if err := json.Unmarshal(batch.Results, &out.Results); err != nil {
			return nil, storageError("decode batch results", err)
		}
	}
	return out, nil
}
