package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"certdesk/config"
	"certdesk/database"
	"certdesk/services/certificate"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	svc, err := certificate.NewFromConfig(database.Database.Db, config.AppConfig)
	if err != nil {
		log.Fatalf("Failed to set up certificate service: %v", err)
	}

	report, err := svc.Reconcile(context.Background())
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal(err)
		}
	} else {
		printReport(os.Stdout, report)
	}

	if !report.Clean() {
		os.Exit(1)
	}
}

func printReport(w io.Writer, r *certificate.Report) {
	title := color.New(color.FgCyan, color.Bold)
	section := color.New(color.FgYellow)

	title.Fprintf(w, "\n=== Certificate reconciliation (%s) ===\n", r.CheckedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Files on disk: %d, issued enrollments: %d\n", r.Files, r.Issued)

	if r.Clean() {
		color.New(color.FgGreen).Fprintln(w, "Everything matches.")
		return
	}

	if len(r.OrphanFiles) > 0 {
		section.Fprintln(w, "\nFiles not referenced by any enrollment")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"File"})
		for _, f := range r.OrphanFiles {
			table.Append([]string{f})
		}
		table.Render()
	}

	if len(r.MissingFiles) > 0 {
		section.Fprintln(w, "\nIssued enrollments without a file")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Enrollment", "Certificate", "Expected file"})
		for _, m := range r.MissingFiles {
			table.Append([]string{strconv.FormatUint(uint64(m.EnrollmentID), 10), m.CertificateCode, m.File})
		}
		table.Render()
	}

	if len(r.CounterDrift) > 0 {
		section.Fprintln(w, "\nCounters behind issued serials")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Prefix", "Last count", "Highest issued"})
		for _, d := range r.CounterDrift {
			table.Append([]string{d.Prefix, strconv.Itoa(d.LastCount), strconv.Itoa(d.HighestIssued)})
		}
		table.Render()
	}

	color.New(color.FgRed).Fprintln(w, "\nInconsistencies found.")
}
