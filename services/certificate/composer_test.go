package certificate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawnText struct {
	font FontWeight
	size float64
	x, y float64
	text string
}

type drawnImage struct {
	x, y, size float64
}

// recordingCanvas measures text as 0.5*size per rune, with bold 10% wider.
type recordingCanvas struct {
	width, height float64
	texts         []drawnText
	images        []drawnImage
	failOn        string
}

func (c *recordingCanvas) PageSize() (float64, float64) { return c.width, c.height }

func (c *recordingCanvas) TextWidth(font FontWeight, size float64, text string) (float64, error) {
	w := float64(len([]rune(text))) * size * 0.5
	if font == FontBold {
		w *= 1.1
	}
	return w, nil
}

func (c *recordingCanvas) DrawText(font FontWeight, size, x, y float64, text string) error {
	if text == c.failOn {
		return errors.New("glyph missing")
	}
	c.texts = append(c.texts, drawnText{font: font, size: size, x: x, y: y, text: text})
	return nil
}

func (c *recordingCanvas) DrawImage(_ []byte, x, y, size float64) error {
	c.images = append(c.images, drawnImage{x: x, y: y, size: size})
	return nil
}

func (c *recordingCanvas) find(t *testing.T, text string) drawnText {
	t.Helper()
	for _, d := range c.texts {
		if d.text == text {
			return d
		}
	}
	t.Fatalf("text %q was not drawn", text)
	return drawnText{}
}

func sampleFields() Fields {
	return Fields{
		FullName:    "Ali Valiyev",
		CourseLabel: "Malaka oshirish haqida",
		Code:        "QT 00042",
		Serial:      "00042",
		IssueDate:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		QR:          []byte("png"),
	}
}

func TestComposeMessageBlocks(t *testing.T) {
	canvas := &recordingCanvas{width: 842, height: 595}
	f := sampleFields()
	f.Message = "Line1\n\nLine2  \n"
	f.AdditionalMessage = "Line3\n"

	c := &Composer{Layout: DefaultLayout()}
	require.NoError(t, c.Compose(canvas, f))

	l1, l2, l3 := canvas.find(t, "Line1"), canvas.find(t, "Line2"), canvas.find(t, "Line3")
	assert.Equal(t, FontRegular, l1.font)
	assert.Equal(t, FontRegular, l2.font)
	assert.Equal(t, FontBold, l3.font)
	assert.Equal(t, 310.0, l1.y)
	assert.Equal(t, 30.0, l1.y-l2.y)
	assert.Equal(t, 30.0, l2.y-l3.y)

	var messageLines int
	for _, d := range canvas.texts {
		if d.size == 16 {
			messageLines++
		}
	}
	assert.Equal(t, 3, messageLines)
}

func TestMessageLinesSwitchAtBlockBoundary(t *testing.T) {
	lines := DefaultLayout().MessageLines("a\nb\nc\nd", "e")
	require.Len(t, lines, 5)
	for _, l := range lines[:4] {
		assert.Equal(t, FontRegular, l.Font)
	}
	assert.Equal(t, FontBold, lines[4].Font)
	assert.Equal(t, 310.0-4*30, lines[4].Y)

	assert.Empty(t, DefaultLayout().MessageLines(" \n\t\n", ""))
}

func TestComposeCentersEveryCenteredField(t *testing.T) {
	canvas := &recordingCanvas{width: 842, height: 595}
	f := sampleFields()
	f.Message = "Kurs muvaffaqiyatli yakunlandi"

	layout := DefaultLayout()
	c := &Composer{Layout: layout}
	require.NoError(t, c.Compose(canvas, f))

	centered := map[string]FieldSpec{
		"ALI VALIYEV":            layout.Fields[FieldFullName],
		"Malaka oshirish haqida": layout.Fields[FieldCourseLabel],
		"QT 00042":               layout.Fields[FieldCode],
		f.Message:                {Size: layout.Message.Size, Font: layout.Message.MainFont},
	}
	for text, spec := range centered {
		d := canvas.find(t, text)
		w, _ := canvas.TextWidth(spec.Font, spec.Size, text)
		assert.InDelta(t, layout.Margin+(canvas.width-w)/2, d.x, 1e-9, text)
		assert.Equal(t, spec.Font, d.font, text)
	}
}

func TestComposeFixedFieldsAndQR(t *testing.T) {
	canvas := &recordingCanvas{width: 842, height: 595}
	c := &Composer{Layout: DefaultLayout()}
	require.NoError(t, c.Compose(canvas, sampleFields()))

	serial := canvas.find(t, "00042")
	assert.Equal(t, drawnText{font: FontItalic, size: 10, x: 709, y: 69, text: "00042"}, serial)

	date := canvas.find(t, "05.03.2024")
	assert.Equal(t, drawnText{font: FontItalic, size: 11, x: 232, y: 71, text: "05.03.2024"}, date)

	name := canvas.find(t, "ALI VALIYEV")
	assert.Equal(t, FontBold, name.font)
	assert.Equal(t, 340.0, name.y)

	assert.Equal(t, []drawnImage{{x: 50, y: 30, size: 105}}, canvas.images)
}

func TestComposeReportsCanvasFailure(t *testing.T) {
	canvas := &recordingCanvas{width: 842, height: 595, failOn: "QT 00042"}
	c := &Composer{Layout: DefaultLayout()}
	err := c.Compose(canvas, sampleFields())
	assert.ErrorContains(t, err, "certificate_code")
}

func TestCenteredX(t *testing.T) {
	assert.Equal(t, 50+(842.0-200)/2, CenteredX(50, 842, 200))
	assert.Equal(t, 0.0, CenteredX(0, 100, 100))
}
