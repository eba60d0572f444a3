package utils

import (
	"regexp"
	"strings"
)

var (
	cardNumberTagRegex = regexp.MustCompile(`<number>(\d+)</number>`)
	cvvTagRegex        = regexp.MustCompile(`<cvv>\d+</cvv>`)
)

// MaskCardNumber keeps the BIN and the last four digits of a card number.
// Numbers too short to carry both are returned fully masked.
func MaskCardNumber(number string) string {
	if len(number) < 10 {
		return strings.Repeat("*", len(number))
	}
	return number[:6] + strings.Repeat("*", len(number)-10) + number[len(number)-4:]
}

// MaskXML rewrites card numbers and CVVs inside an XML payload so it can be logged.
func MaskXML(body string) string {
	body = cardNumberTagRegex.ReplaceAllStringFunc(body, func(tag string) string {
		digits := cardNumberTagRegex.FindStringSubmatch(tag)[1]
		return "<number>" + MaskCardNumber(digits) + "</number>"
	})
	return cvvTagRegex.ReplaceAllString(body, "<cvv>***</cvv>")
}
