package shareinfo

import "errors"

var (
	// ErrInvalidAddress is returned when a record or string address is nil or
	// lies outside the memory being interpreted.
	ErrInvalidAddress = errors.New("shareinfo: invalid host memory address")

	// ErrUnterminated is returned when no NUL terminator is found within the
	// string length limit.
	ErrUnterminated = errors.New("shareinfo: unterminated native string")

	// ErrShortBuffer is returned when an encoded buffer ends before the data
	// it describes.
	ErrShortBuffer = errors.New("shareinfo: buffer too short")

	// ErrUnsupportedPointerSize is returned for pointer widths other than 4 or 8.
	ErrUnsupportedPointerSize = errors.New("shareinfo: unsupported pointer size")

	// ErrUnknownEncoding is returned by ParseEncoding for unrecognised names.
	ErrUnknownEncoding = errors.New("shareinfo: unknown text encoding")

	// ErrInvalidCount is returned for a negative record count.
	ErrInvalidCount = errors.New("shareinfo: invalid record count")

	// ErrEmbeddedNUL is returned when encoding a string that contains a NUL,
	// which cannot be represented in a NUL-terminated native string.
	ErrEmbeddedNUL = errors.New("shareinfo: string contains NUL")
)
