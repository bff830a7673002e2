package certificate

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the issue date format printed on certificates (dd.MM.yyyy).
const DateLayout = "02.01.2006"

// Canvas is a single page the composer draws on. Coordinates are PDF points
// from the bottom-left corner; text y is the baseline.
type Canvas interface {
	PageSize() (width, height float64)
	TextWidth(font FontWeight, size float64, text string) (float64, error)
	DrawText(font FontWeight, size, x, y float64, text string) error
	DrawImage(png []byte, x, y, size float64) error
}

// Fields is everything printed on one certificate.
type Fields struct {
	FullName          string
	CourseLabel       string
	Code              string
	Serial            string
	IssueDate         time.Time
	Message           string
	AdditionalMessage string
	QR                []byte
}

// Line is one rendered line of the message blocks.
type Line struct {
	Text string
	Font FontWeight
	Y    float64
}

type Composer struct {
	Layout Layout
}

func (c *Composer) Compose(canvas Canvas, f Fields) error {
	pageWidth, _ := canvas.PageSize()

	texts := []struct {
		field Field
		text  string
	}{
		{FieldFullName, strings.ToUpper(f.FullName)},
		{FieldCourseLabel, f.CourseLabel},
		{FieldCode, f.Code},
		{FieldSerial, f.Serial},
		{FieldIssueDate, f.IssueDate.Format(DateLayout)},
	}
	for _, t := range texts {
		spec := c.Layout.Fields[t.field]
		if err := c.place(canvas, pageWidth, spec.Anchor, spec.X, spec.Y, spec.Font, spec.Size, t.text); err != nil {
			return fmt.Errorf("%s: %w", t.field, err)
		}
	}

	m := c.Layout.Message
	for _, line := range c.Layout.MessageLines(f.Message, f.AdditionalMessage) {
		if err := c.place(canvas, pageWidth, m.Anchor, m.X, line.Y, line.Font, m.Size, line.Text); err != nil {
			return fmt.Errorf("message: %w", err)
		}
	}

	qr := c.Layout.QR
	if err := canvas.DrawImage(f.QR, qr.X, qr.Y, qr.Size); err != nil {
		return fmt.Errorf("qr: %w", err)
	}
	return nil
}

func (c *Composer) place(canvas Canvas, pageWidth float64, anchor Anchor, x, y float64, font FontWeight, size float64, text string) error {
	if text == "" {
		return nil
	}
	if anchor == AnchorCentered {
		w, err := canvas.TextWidth(font, size, text)
		if err != nil {
			return err
		}
		x = CenteredX(c.Layout.Margin, pageWidth, w)
	}
	return canvas.DrawText(font, size, x, y, text)
}

// CenteredX is the x offset of text of width textWidth centered on the page.
func CenteredX(margin, pageWidth, textWidth float64) float64 {
	return margin + (pageWidth-textWidth)/2
}

// MessageLines lays out the main and additional blocks. Blank lines are
// dropped; main lines take MainFont and additional lines AdditionalFont.
func (l Layout) MessageLines(main, additional string) []Line {
	var lines []Line
	add := func(block string, font FontWeight) {
		for _, text := range splitLines(block) {
			y := l.Message.Y - float64(len(lines))*l.Message.LineHeight
			lines = append(lines, Line{Text: text, Font: font, Y: y})
		}
	}
	add(main, l.Message.MainFont)
	add(additional, l.Message.AdditionalFont)
	return lines
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
