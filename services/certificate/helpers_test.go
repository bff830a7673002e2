package certificate

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"certdesk/database"
	"certdesk/models/course"

	"github.com/signintech/gopdf"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"gorm.io/gorm"
)

const testBaseURL = "https://cert.example.uz"

var dbSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:certificate_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// memAssets serves assets from memory.
type memAssets map[string][]byte

func (m memAssets) Fetch(_ context.Context, name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func templatePDF(t *testing.T) []byte {
	t.Helper()
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: gopdf.Rect{W: 842, H: 595}})
	pdf.AddPage()
	pdf.SetLineWidth(2)
	pdf.Line(20, 20, 822, 20)
	pdf.Line(20, 575, 822, 575)

	var buf bytes.Buffer
	require.NoError(t, pdf.Write(&buf))
	return buf.Bytes()
}

func testAssets(t *testing.T) memAssets {
	names := DefaultAssetNames()
	return memAssets{
		names.Template: templatePDF(t),
		names.Regular:  goregular.TTF,
		names.Bold:     gobold.TTF,
		names.Italic:   goitalic.TTF,
	}
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	outDir string
	course course.Course
}

func newFixture(t *testing.T, assets AssetStore) *fixture {
	t.Helper()
	db := newTestDB(t)
	out := t.TempDir()

	svc, err := NewService(db, assets, LocalFileStore{Dir: out, PublicPath: "/certificates"}, Options{
		PublicBaseURL:    testBaseURL,
		CourseLabel:      "Malaka oshirish haqida",
		Layout:           DefaultLayout(),
		AssetNames:       DefaultAssetNames(),
		BatchConcurrency: 4,
	})
	require.NoError(t, err)

	c := course.Course{Name: "Quality Training", Prefix: "QT"}
	require.NoError(t, db.Create(&c).Error)

	return &fixture{db: db, svc: svc, outDir: out, course: c}
}

func (f *fixture) enroll(t *testing.T, passport string, passed bool) course.Enrollment {
	t.Helper()
	return f.enrollIn(t, f.course, passport, passed)
}

func (f *fixture) enrollIn(t *testing.T, c course.Course, passport string, passed bool) course.Enrollment {
	t.Helper()
	var s course.Student
	require.NoError(t, f.db.Where(course.Student{Passport: passport}).
		Attrs(course.Student{FullName: "Student " + strings.ToLower(passport)}).
		FirstOrCreate(&s).Error)

	e := course.Enrollment{StudentID: s.ID, CourseID: c.ID, Department: "Toshkent", ExamResult: passed}
	require.NoError(t, f.db.Create(&e).Error)
	return e
}

func (f *fixture) reload(t *testing.T, id uint) course.Enrollment {
	t.Helper()
	var e course.Enrollment
	require.NoError(t, f.db.First(&e, id).Error)
	return e
}

func (f *fixture) counter(t *testing.T, prefix string) (course.CertificateCounter, bool) {
	t.Helper()
	var c course.CertificateCounter
	err := f.db.Where("prefix = ?", prefix).Limit(1).Find(&c).Error
	require.NoError(t, err)
	return c, c.ID != 0
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.outDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (f *fixture) fileBytes(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.outDir, name))
	require.NoError(t, err)
	return data
}
