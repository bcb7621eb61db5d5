// Package textenc decodes raw source bytes using a declared character
// encoding label.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrInvalidBytes        = errors.New("encoding errors")
)

// IsUTF8 reports whether label names UTF-8, ignoring case and the hyphen.
func IsUTF8(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	return l == "utf-8" || l == "utf8"
}

// Lookup resolves a WHATWG encoding label such as "windows-1252",
// "latin1", "shift_jis" or "utf-16le".
func Lookup(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedEncoding, label)
	}
	return enc, nil
}

// boms lists the byte-order marks recognised at the start of input, in the
// order unicode.BOMOverride checks them.
var boms = []struct {
	mark []byte
	enc  encoding.Encoding
}{
	{[]byte{0xFF, 0xFE}, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	{[]byte{0xFE, 0xFF}, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	{[]byte{0xEF, 0xBB, 0xBF}, unicode.UTF8},
}

// sniffBOM strips a leading byte-order mark. A mark overrides the declared
// encoding.
func sniffBOM(b []byte) (encoding.Encoding, []byte) {
	for _, bom := range boms {
		if bytes.HasPrefix(b, bom.mark) {
			return bom.enc, b[len(bom.mark):]
		}
	}
	return nil, b
}

// Decode converts b to a string. A leading byte-order mark is removed and
// selects the encoding. UTF-8 input is only validated. Any other encoding
// must decode without substitutions: bytes the encoding cannot map are
// rejected rather than replaced.
func Decode(b []byte, label string) (string, error) {
	enc, body := sniffBOM(b)
	if enc == nil {
		if IsUTF8(label) {
			enc = unicode.UTF8
		} else {
			var err error
			if enc, err = Lookup(label); err != nil {
				return "", err
			}
		}
	}

	if enc == unicode.UTF8 {
		if !utf8.Valid(body) {
			return "", fmt.Errorf("%w while decoding as '%s': input is not valid UTF-8", ErrInvalidBytes, label)
		}
		return string(body), nil
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("%w while decoding as '%s': %v", ErrInvalidBytes, label, err)
	}
	// Unmappable input decodes to U+FFFD. A replacement character that was
	// really in the input survives the round trip back to the source bytes.
	if bytes.ContainsRune(out, utf8.RuneError) {
		back, err := enc.NewEncoder().Bytes(out)
		if err != nil || !bytes.Equal(back, body) {
			return "", fmt.Errorf("%w while decoding as '%s'", ErrInvalidBytes, label)
		}
	}
	return string(out), nil
}

// Encode is the inverse of Decode, used when writing sample data in a
// non-UTF-8 encoding.
func Encode(s, label string) ([]byte, error) {
	if IsUTF8(label) {
		return []byte(s), nil
	}
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("cannot encode as '%s': %w", label, err)
	}
	return out, nil
}
