package main

import (
	"bytes"
	"testing"
	"time"

	"certdesk/services/certificate"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	var clean bytes.Buffer
	printReport(&clean, &certificate.Report{CheckedAt: time.Now(), Files: 2, Issued: 2})
	assert.Contains(t, clean.String(), "Everything matches.")

	var dirty bytes.Buffer
	printReport(&dirty, &certificate.Report{
		CheckedAt:    time.Now(),
		OrphanFiles:  []string{"QT00009.pdf"},
		MissingFiles: []certificate.MissingFile{{EnrollmentID: 7, CertificateCode: "QT 00005", File: "QT00005.pdf"}},
		CounterDrift: []certificate.CounterDrift{{Prefix: "QT", LastCount: 2, HighestIssued: 5}},
	})
	out := dirty.String()
	assert.Contains(t, out, "QT00009.pdf")
	assert.Contains(t, out, "QT 00005")
	assert.Contains(t, out, "HIGHEST ISSUED")
	assert.Contains(t, out, "Inconsistencies found.")
}
