// Package text handles the CP932 (Shift JIS) strings used by game files.
package text

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Text is a raw CP932-encoded string as stored in game files. The zero value
// is an empty string.
type Text []byte

// Encode converts a UTF-8 string into CP932 bytes.
func Encode(s string) (Text, error) {
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), s)
	if err != nil {
		return nil, fmt.Errorf("encode text: %w", err)
	}
	return Text(encoded), nil
}

// Decode converts the text into a UTF-8 string.
func (t Text) Decode() (string, error) {
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), t)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(decoded), nil
}

// Bytes returns the raw CP932 bytes.
func (t Text) Bytes() []byte {
	return []byte(t)
}

// Equal reports whether two strings hold the same bytes.
func (t Text) Equal(other Text) bool {
	return bytes.Equal(t, other)
}

// String implements fmt.Stringer. Undecodable text is shown as a quoted byte
// string.
func (t Text) String() string {
	s, err := t.Decode()
	if err != nil {
		return fmt.Sprintf("%q", []byte(t))
	}
	return s
}
