package dataprocessing

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const utf8BOM = "\ufeff"

// DecodeText converts raw report bytes into text. B3 and Profit exports are
// usually Windows-1252; input that is already valid UTF-8 is kept as is.
func DecodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return strings.TrimPrefix(string(raw), utf8BOM)
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "")
	}
	return string(decoded)
}

// splitLines splits text on newlines, tolerating CRLF
func splitLines(content string) []string {
	content = strings.TrimPrefix(content, utf8BOM)
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}
