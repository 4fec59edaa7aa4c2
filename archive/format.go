package archive

import "errors"

const (
	// Version is the current archive format version.
	Version = 1

	// HeaderSize is the fixed byte length of the archive header:
	// 4-byte magic, 4-byte version, 8-byte entry count.
	HeaderSize = 16

	// EntrySize is the packed byte length of one entry:
	// 4-byte IP followed by a 2-byte signed score.
	EntrySize = 6

	// MaxEntries is the safety cap on the declared entry count.
	MaxEntries = uint64(1) << 32

	// batchEntries is the number of entries buffered between writes to
	// amortize system-call overhead.
	batchEntries = 4096
)

// magic identifies score archive files.
var magic = [4]byte{'S', 'A', 'U', 'R'}

var (
	// ErrInvalidMagic is returned when a file does not start with the
	// archive magic bytes.
	ErrInvalidMagic = errors.New("invalid archive magic")

	// ErrInvalidVersion is returned for version 0 or any version newer
	// than this package understands.
	ErrInvalidVersion = errors.New("unsupported archive version")

	// ErrTooManyEntries is returned when the declared entry count exceeds
	// the safety cap.
	ErrTooManyEntries = errors.New("archive entry count exceeds limit")
)
