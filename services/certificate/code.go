package certificate

import (
	"fmt"
	"strings"
	"unicode"
)

const numeroSign = '№'

// Compose builds the human-facing certificate code, e.g. "QT 00042".
func Compose(prefix string, serial int) string {
	return fmt.Sprintf("%s %05d", prefix, serial)
}

// Strip removes every whitespace rune and the numero sign from code.
func Strip(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == numeroSign {
			return -1
		}
		return r
	}, code)
}

// FileName is the name of the generated PDF for code.
func FileName(code string) string {
	return Strip(code) + ".pdf"
}

// SerialSuffix returns the serial part of a composed code: the text after
// the last run of whitespace. Codes without whitespace are returned unchanged.
func SerialSuffix(code string) string {
	fields := strings.Fields(code)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
