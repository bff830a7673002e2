package certificate

import (
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	verificationPath = "/certificates/"
	defaultQRPixels  = 256
)

// QRBuilder derives the public verification link for a certificate code and
// encodes it as a PNG QR code. Output depends only on BaseURL and the code.
type QRBuilder struct {
	BaseURL string
	Pixels  int
}

// VerificationURL returns {BaseURL}/certificates/{stripped code}.pdf.
func (q QRBuilder) VerificationURL(code string) string {
	return strings.TrimRight(q.BaseURL, "/") + verificationPath + FileName(code)
}

func (q QRBuilder) PNG(code string) ([]byte, error) {
	pixels := q.Pixels
	if pixels <= 0 {
		pixels = defaultQRPixels
	}
	return qrcode.Encode(q.VerificationURL(code), qrcode.Medium, pixels)
}
