package validator

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// errNotUTF8 is recorded when the UTF-8 attempt fails.
var errNotUTF8 = errors.New("invalid utf-8 byte sequence")

// Decode turns raw bytes into a Document. UTF-8 is tried first, then
// ISO-8859-1, the encoding Excel uses for plain "CSV (delimitado por comas)".
func Decode(data []byte) (*Document, *StructuralError) {
	if utf8.Valid(data) {
		text := string(data)
		return &Document{Text: text, Lines: splitLines(text), Encoding: EncodingUTF8}, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, errUnsupportedEncoding(errors.Join(errNotUTF8, err))
	}
	text := string(decoded)
	return &Document{Text: text, Lines: splitLines(text), Encoding: EncodingLatin1}, nil
}

// splitLines splits on \n, \r\n and \r. A trailing line break does not
// produce an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
