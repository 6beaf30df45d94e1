package shareinfo

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Encoding selects how native strings are laid out in host memory. It is
// chosen once at the interop boundary and carried by Decoder/Encoder values.
type Encoding int

const (
	// EncodingUTF16 is the wide (W) API form: NUL-terminated UTF-16 code units.
	EncodingUTF16 Encoding = iota
	// EncodingANSI is the narrow (A) API form, decoded as Windows-1252.
	EncodingANSI
)

// maxStringUnits bounds the scan for a terminator in native memory.
const maxStringUnits = 1 << 16

// ParseEncoding accepts "utf16"/"wide"/"unicode" and "ansi"/"narrow".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf16", "utf-16", "wide", "unicode":
		return EncodingUTF16, nil
	case "ansi", "narrow", "cp1252", "windows-1252":
		return EncodingANSI, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
}

func (e Encoding) String() string {
	switch e {
	case EncodingUTF16:
		return "utf16"
	case EncodingANSI:
		return "ansi"
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// UnitSize is the width in bytes of one code unit, and of the terminator.
func (e Encoding) UnitSize() int {
	if e == EncodingANSI {
		return 1
	}
	return 2
}

// Decode converts raw code units (without terminator) to a Go string. The
// result never aliases b.
func (e Encoding) Decode(b []byte, order binary.ByteOrder) (string, error) {
	switch e {
	case EncodingANSI:
		out, err := charmap.Windows1252.NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("decode ansi string: %w", err)
		}
		return string(out), nil
	case EncodingUTF16:
		if len(b)%2 != 0 {
			return "", fmt.Errorf("decode utf16 string: odd length %d", len(b))
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = order.Uint16(b[i*2:])
		}
		return string(utf16.Decode(units)), nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownEncoding, int(e))
}

// Encode converts s to code units followed by a NUL terminator.
func (e Encoding) Encode(s string, order binary.ByteOrder) ([]byte, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, ErrEmbeddedNUL
	}
	switch e {
	case EncodingANSI:
		out, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("encode ansi string: %w", err)
		}
		return append(out, 0), nil
	case EncodingUTF16:
		units := utf16.Encode([]rune(s))
		out := make([]byte, (len(units)+1)*2)
		for i, u := range units {
			order.PutUint16(out[i*2:], u)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownEncoding, int(e))
}
