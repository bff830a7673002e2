// Package certtest provides in-memory certificate assets and a ready
// Service backed by SQLite for tests of packages that serve certificates.
package certtest

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"sync/atomic"
	"testing"

	"certdesk/database"
	"certdesk/services/certificate"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"gorm.io/gorm"
)

const BaseURL = "https://cert.example.uz"

// MemStore is an AssetStore over a map of file names to contents.
type MemStore map[string][]byte

func (m MemStore) Fetch(_ context.Context, name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

// Template returns a blank one-page A4 landscape PDF.
func Template() ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: gopdf.Rect{W: 842, H: 595}})
	pdf.AddPage()
	pdf.SetLineWidth(2)
	pdf.Line(20, 20, 822, 20)

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Assets holds the blank template and the Go fonts under the default names.
func Assets() (MemStore, error) {
	tpl, err := Template()
	if err != nil {
		return nil, err
	}
	names := certificate.DefaultAssetNames()
	return MemStore{
		names.Template: tpl,
		names.Regular:  goregular.TTF,
		names.Bold:     gobold.TTF,
		names.Italic:   goitalic.TTF,
	}, nil
}

var seq atomic.Int64

// DB opens a private in-memory SQLite database with the schema migrated.
func DB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:certtest_%d?mode=memory&cache=shared", seq.Add(1)))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Service returns a certificate service writing into outDir.
func Service(t testing.TB, db *gorm.DB, outDir string) *certificate.Service {
	t.Helper()
	assets, err := Assets()
	if err != nil {
		t.Fatalf("build test assets: %v", err)
	}
	svc, err := certificate.NewService(db, assets, certificate.LocalFileStore{Dir: outDir, PublicPath: "/certificates"}, certificate.Options{
		PublicBaseURL:    BaseURL,
		CourseLabel:      "Malaka oshirish haqida",
		Layout:           certificate.DefaultLayout(),
		AssetNames:       certificate.DefaultAssetNames(),
		BatchConcurrency: 2,
	})
	if err != nil {
		t.Fatalf("new certificate service: %v", err)
	}
	return svc
}
