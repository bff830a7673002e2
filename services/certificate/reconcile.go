package certificate

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"certdesk/models/course"
)

type MissingFile struct {
	EnrollmentID    uint   `json:"enrollment_id"`
	CertificateCode string `json:"certificate_code"`
	File            string `json:"file"`
}

// CounterDrift is a prefix whose counter is behind the highest serial on
// record. The next first issue for it would collide.
type CounterDrift struct {
	Prefix        string `json:"prefix"`
	LastCount     int    `json:"last_count"`
	HighestIssued int    `json:"highest_issued"`
}

// Report lists inconsistencies between stored files, enrollments and counters.
type Report struct {
	CheckedAt    time.Time      `json:"checked_at"`
	Files        int            `json:"files"`
	Issued       int            `json:"issued"`
	OrphanFiles  []string       `json:"orphan_files"`
	MissingFiles []MissingFile  `json:"missing_files"`
	CounterDrift []CounterDrift `json:"counter_drift"`
}

func (r *Report) Clean() bool {
	return len(r.OrphanFiles) == 0 && len(r.MissingFiles) == 0 && len(r.CounterDrift) == 0
}

// Reconcile compares the output directory with the store. It only reads.
func (s *Service) Reconcile(ctx context.Context) (*Report, error) {
	files, err := s.files.List()
	if err != nil {
		return nil, storageError("list certificate files", err)
	}

	var issued []course.Enrollment
	if err := s.db.WithContext(ctx).Unscoped().
		Where("certificate_code IS NOT NULL AND certificate_url IS NOT NULL").
		Order("id").
		Find(&issued).Error; err != nil {
		return nil, storageError("load issued enrollments", err)
	}

	var counters []course.CertificateCounter
	if err := s.db.WithContext(ctx).Order("prefix").Find(&counters).Error; err != nil {
		return nil, storageError("load certificate counters", err)
	}

	report := &Report{CheckedAt: time.Now(), Files: len(files), Issued: len(issued)}

	onDisk := make(map[string]bool, len(files))
	for _, f := range files {
		onDisk[f] = true
	}

	referenced := make(map[string]bool, len(issued))
	highest := make(map[string]int)
	for _, e := range issued {
		file := fileOf(*e.CertificateURL)
		referenced[file] = true
		if !onDisk[file] {
			report.MissingFiles = append(report.MissingFiles, MissingFile{
				EnrollmentID:    e.ID,
				CertificateCode: *e.CertificateCode,
				File:            file,
			})
		}
		prefix, serial, ok := splitCode(*e.CertificateCode)
		if ok && serial > highest[prefix] {
			highest[prefix] = serial
		}
	}

	for _, f := range files {
		if !referenced[f] {
			report.OrphanFiles = append(report.OrphanFiles, f)
		}
	}

	lastCount := make(map[string]int, len(counters))
	for _, c := range counters {
		lastCount[c.Prefix] = c.LastCount
	}
	for prefix, top := range highest {
		if lastCount[prefix] < top {
			report.CounterDrift = append(report.CounterDrift, CounterDrift{Prefix: prefix, LastCount: lastCount[prefix], HighestIssued: top})
		}
	}
	sort.Slice(report.CounterDrift, func(i, j int) bool { return report.CounterDrift[i].Prefix < report.CounterDrift[j].Prefix })

	log.Printf("[RECONCILE] %d files, %d issued, %d orphan files, %d missing files, %d drifted counters",
		report.Files, report.Issued, len(report.OrphanFiles), len(report.MissingFiles), len(report.CounterDrift))
	return report, nil
}

// splitCode parses "QT 00042" into its prefix and serial.
func splitCode(code string) (string, int, bool) {
	suffix := SerialSuffix(code)
	serial, err := strconv.Atoi(suffix)
	if err != nil {
		return "", 0, false
	}
	prefix := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(code), suffix))
	if prefix == "" {
		return "", 0, false
	}
	return prefix, serial, true
}
