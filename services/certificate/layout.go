package certificate

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Anchor decides how a field's x coordinate is obtained.
type Anchor string

const (
	AnchorFixed    Anchor = "fixed"
	AnchorCentered Anchor = "centered"
)

// FontWeight names one of the three embedded fonts.
type FontWeight string

const (
	FontRegular FontWeight = "regular"
	FontBold    FontWeight = "bold"
	FontItalic  FontWeight = "italic"
)

// Field is a single-line text field on the certificate page.
type Field string

const (
	FieldFullName    Field = "full_name"
	FieldCourseLabel Field = "course_label"
	FieldCode        Field = "certificate_code"
	FieldSerial      Field = "serial"
	FieldIssueDate   Field = "issue_date"
)

var requiredFields = []Field{FieldFullName, FieldCourseLabel, FieldCode, FieldSerial, FieldIssueDate}

// FieldSpec places one text field. Coordinates are PDF points measured from
// the bottom-left corner of the page; Y is the text baseline. X is ignored
// for centered fields.
type FieldSpec struct {
	Anchor Anchor     `yaml:"anchor"`
	X      float64    `yaml:"x"`
	Y      float64    `yaml:"y"`
	Size   float64    `yaml:"size"`
	Font   FontWeight `yaml:"font"`
}

// MessageSpec places the free-text message blocks. Lines of both blocks are
// stacked downward from Y, LineHeight apart.
type MessageSpec struct {
	Anchor         Anchor     `yaml:"anchor"`
	X              float64    `yaml:"x"`
	Y              float64    `yaml:"y"`
	Size           float64    `yaml:"size"`
	LineHeight     float64    `yaml:"line_height"`
	MainFont       FontWeight `yaml:"main_font"`
	AdditionalFont FontWeight `yaml:"additional_font"`
}

// QRSpec is the bottom-left corner and edge length of the QR image.
type QRSpec struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Size float64 `yaml:"size"`
}

type Layout struct {
	Margin  float64             `yaml:"margin"`
	Fields  map[Field]FieldSpec `yaml:"fields"`
	Message MessageSpec         `yaml:"message"`
	QR      QRSpec              `yaml:"qr"`
}

// DefaultLayout matches the stock certificate template.
func DefaultLayout() Layout {
	return Layout{
		Margin: 50,
		Fields: map[Field]FieldSpec{
			FieldFullName:    {Anchor: AnchorCentered, Y: 340, Size: 18, Font: FontBold},
			FieldCourseLabel: {Anchor: AnchorCentered, Y: 470, Size: 18, Font: FontRegular},
			FieldCode:        {Anchor: AnchorCentered, Y: 372, Size: 13, Font: FontBold},
			FieldSerial:      {Anchor: AnchorFixed, X: 709, Y: 69, Size: 10, Font: FontItalic},
			FieldIssueDate:   {Anchor: AnchorFixed, X: 232, Y: 71, Size: 11, Font: FontItalic},
		},
		Message: MessageSpec{
			Anchor:         AnchorCentered,
			Y:              310,
			Size:           16,
			LineHeight:     30,
			MainFont:       FontRegular,
			AdditionalFont: FontBold,
		},
		QR: QRSpec{X: 50, Y: 30, Size: 105},
	}
}

// LoadLayout returns the default layout with the overrides from the YAML
// file at path applied. Each field listed in the file replaces the default
// spec for that field entirely. An empty path yields the default layout.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout file: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse layout file %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("layout file %s: %w", path, err)
	}
	return layout, nil
}

// Validate reports every problem in the layout at once.
func (l Layout) Validate() error {
	var errs []error

	if l.Margin < 0 {
		errs = append(errs, errors.New("margin must not be negative"))
	}
	for _, f := range requiredFields {
		spec, ok := l.Fields[f]
		if !ok {
			errs = append(errs, fmt.Errorf("field %s is missing", f))
			continue
		}
		errs = append(errs, checkPlacement(string(f), spec.Anchor, spec.X, spec.Y, spec.Size)...)
		if !validFont(spec.Font) {
			errs = append(errs, fmt.Errorf("field %s: unknown font %q", f, spec.Font))
		}
	}
	for f := range l.Fields {
		if !isKnownField(f) {
			errs = append(errs, fmt.Errorf("unknown field %q", f))
		}
	}

	m := l.Message
	errs = append(errs, checkPlacement("message", m.Anchor, m.X, m.Y, m.Size)...)
	if m.LineHeight <= 0 {
		errs = append(errs, errors.New("message: line_height must be positive"))
	}
	if !validFont(m.MainFont) || !validFont(m.AdditionalFont) {
		errs = append(errs, errors.New("message: main_font and additional_font must be regular, bold or italic"))
	}

	if l.QR.Size <= 0 {
		errs = append(errs, errors.New("qr: size must be positive"))
	}
	if l.QR.X < 0 || l.QR.Y < 0 {
		errs = append(errs, errors.New("qr: position must not be negative"))
	}

	return errors.Join(errs...)
}

func checkPlacement(name string, anchor Anchor, x, y, size float64) []error {
	var errs []error
	if anchor != AnchorFixed && anchor != AnchorCentered {
		errs = append(errs, fmt.Errorf("%s: anchor must be fixed or centered, got %q", name, anchor))
	}
	if x < 0 || y < 0 {
		errs = append(errs, fmt.Errorf("%s: position must not be negative", name))
	}
	if size <= 0 {
		errs = append(errs, fmt.Errorf("%s: size must be positive", name))
	}
	return errs
}

func validFont(f FontWeight) bool {
	return f == FontRegular || f == FontBold || f == FontItalic
}

func isKnownField(f Field) bool {
	for _, known := range requiredFields {
		if f == known {
			return true
		}
	}
	return false
}
