package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdi"
	"github.com/signintech/gopdf"
)

const templateBox = "/MediaBox"

// pdfCanvas draws on a copy of page 1 of the certificate template.
type pdfCanvas struct {
	pdf    *gopdf.GoPdf
	width  float64
	height float64
}

func newPDFCanvas(assets Assets) (canvas *pdfCanvas, err error) {
	// The template importer panics on malformed input.
	defer func() {
		if r := recover(); r != nil {
			canvas = nil
			err = templateError(fmt.Errorf("import template: %v", r))
		}
	}()

	width, height, err := templatePageSize(assets.Template)
	if err != nil {
		return nil, templateError(err)
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: gopdf.Rect{W: width, H: height}})
	pdf.AddPage()

	rs := io.ReadSeeker(bytes.NewReader(assets.Template))
	tpl := pdf.ImportPageStream(&rs, 1, templateBox)
	pdf.UseImportedTemplate(tpl, 0, 0, width, height)

	for _, weight := range []FontWeight{FontRegular, FontBold, FontItalic} {
		if err := pdf.AddTTFFontData(string(weight), assets.Fonts[weight]); err != nil {
			return nil, templateError(fmt.Errorf("%s font: %w", weight, err))
		}
	}

	return &pdfCanvas{pdf: pdf, width: width, height: height}, nil
}

func templatePageSize(template []byte) (float64, float64, error) {
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(template))
	importer.SetSourceStream(&rs)

	box, ok := importer.GetPageSizes()[1][templateBox]
	if !ok || box["w"] <= 0 || box["h"] <= 0 {
		return 0, 0, errors.New("template has no usable first page")
	}
	return box["w"], box["h"], nil
}

func templateError(err error) error {
	return newError(KindTemplateAssetMissing, "Certificate template could not be read!", err)
}

func (c *pdfCanvas) PageSize() (float64, float64) {
	return c.width, c.height
}

func (c *pdfCanvas) TextWidth(font FontWeight, size float64, text string) (float64, error) {
	if err := c.pdf.SetFont(string(font), "", size); err != nil {
		return 0, err
	}
	return c.pdf.MeasureTextWidth(text)
}

// DrawText converts the bottom-left origin to gopdf's top-left one.
func (c *pdfCanvas) DrawText(font FontWeight, size, x, y float64, text string) error {
	if err := c.pdf.SetFont(string(font), "", size); err != nil {
		return err
	}
	c.pdf.SetXY(x, c.height-y)
	return c.pdf.Text(text)
}

func (c *pdfCanvas) DrawImage(png []byte, x, y, size float64) error {
	img, err := gopdf.ImageHolderByBytes(png)
	if err != nil {
		return err
	}
	return c.pdf.ImageByHolder(img, x, c.height-y-size, &gopdf.Rect{W: size, H: size})
}

func (c *pdfCanvas) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
