package certificate

import (
	"fmt"
	"sync"
	"time"

	"certdesk/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reservation is a serial taken from a prefix counter but not yet written back.
type Reservation struct {
	CounterID uint
	Prefix    string
	Serial    int
}

// Allocator hands out per-prefix serials and is the only writer of
// CertificateCounter.LastCount.
//
// Work on one prefix is serialized twice: by an in-process mutex, and by a
// row lock on the counter held for the whole enclosing transaction. The
// write-back in Commit is a compare-and-swap, so a counter that moved under
// a driver without row locks is reported instead of overwritten.
type Allocator struct {
	locks sync.Map
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Lock blocks until the caller owns prefix within this process.
func (a *Allocator) Lock(prefix string) (unlock func()) {
	v, _ := a.locks.LoadOrStore(prefix, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Reserve returns LastCount+1 for prefix, creating the counter at zero on
// first use. The counter row stays locked until tx finishes.
func (a *Allocator) Reserve(tx *gorm.DB, prefix string) (Reservation, error) {
	seed := course.CertificateCounter{Prefix: prefix, LastCount: 0}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prefix"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return Reservation{}, storageError("create certificate counter", err)
	}

	var counter course.CertificateCounter
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ?", prefix).
		First(&counter).Error; err != nil {
		return Reservation{}, storageError("lock certificate counter", err)
	}

	return Reservation{CounterID: counter.ID, Prefix: prefix, Serial: counter.LastCount + 1}, nil
}

// Commit persists the reserved serial as the counter's new LastCount.
func (a *Allocator) Commit(tx *gorm.DB, r Reservation) error {
	res := tx.Model(&course.CertificateCounter{}).
		Where("id = ? AND last_count = ?", r.CounterID, r.Serial-1).
		Updates(map[string]interface{}{
			"last_count": r.Serial,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return storageError("update certificate counter", res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(KindDuplicateCertificateNumber,
			fmt.Sprintf("Certificate counter for %s changed while serial %d was being issued!", r.Prefix, r.Serial), nil)
	}
	return nil
}

// ensureUnique fails when an enrollment other than enrollmentID already holds code.
// Soft-deleted rows count, since they still occupy the unique index.
func ensureUnique(tx *gorm.DB, code string, enrollmentID uint) error {
	var taken int64
	if err := tx.Unscoped().Model(&course.Enrollment{}).
		Where("certificate_code = ? AND id <> ?", code, enrollmentID).
		Count(&taken).Error; err != nil {
		return storageError("check certificate number", err)
	}
	if taken > 0 {
		return newError(KindDuplicateCertificateNumber,
			fmt.Sprintf("Certificate number %s is already assigned to another enrollment!", code), nil)
	}
	return nil
}
