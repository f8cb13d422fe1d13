package buffer

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText turns raw file bytes into a UTF-8 string. UTF-16 files are
// recognized by their BOM and transformed; anything else must already be
// valid UTF-8 or the open fails with ErrDecode.
func decodeText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return string(out), nil

	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		data = data[3:] // strip UTF-8 BOM
	}

	if !utf8.Valid(data) {
		return "", ErrDecode
	}
	return string(data), nil
}
