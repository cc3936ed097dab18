// Package internal contains helpers shared by the pgpmail packages.
package internal

import (
	"bytes"
	"strings"
	"unicode"
)

var (
	nl  = []byte("\n")
	rnl = []byte("\r\n")
)

// Canonicalize returns text with every line ending normalized to CRLF,
// the line-ending form RFC 3156 requires for signed material.
func Canonicalize(text string) string {
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n")
}

// CanonicalizeBytes is Canonicalize for byte slices.
func CanonicalizeBytes(text []byte) []byte {
	return bytes.ReplaceAll(bytes.ReplaceAll(text, rnl, nl), nl, rnl)
}

// TrimEachLine removes trailing whitespace from every line.
func TrimEachLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	return strings.Join(lines, "\n")
}

// TrimEachLineBytes is TrimEachLine for byte slices.
func TrimEachLineBytes(text []byte) []byte {
	lines := bytes.Split(text, nl)
	for i := range lines {
		lines[i] = bytes.TrimRight(lines[i], " \t\r")
	}
	return bytes.Join(lines, nl)
}

// SanitizeString replaces bytes that are not valid UTF-8 before body
// text is handed to the UI layer.
func SanitizeString(input string) string {
	return strings.ToValidUTF8(input, string(unicode.ReplacementChar))
}
