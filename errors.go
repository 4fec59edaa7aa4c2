package ipscore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ipscore/archive"
)

var (
	// ErrNilStore is returned when an operation is invoked on a nil store.
	ErrNilStore = errors.New("nil store")

	// ErrInvalidArgument is returned for unparseable IPs and corrupt
	// archive headers. Decay has no error result: it reports an
	// out-of-range factor by returning zero modified scores.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfMemory is the out-of-memory member of the error contract.
	// Go heap exhaustion is not recoverable, so no operation of this
	// package returns it.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrIO is returned for any file-system failure during save, load or
	// bulk load.
	ErrIO = errors.New("i/o failure")
)

// Code is the numeric error classification shared with other bindings of
// the engine. The values are part of the contract: OK is zero and every
// failure is negative.
type Code int

const (
	CodeOK              Code = 0
	CodeNullArgument    Code = -1
	CodeInvalidArgument Code = -2
	CodeOutOfMemory     Code = -3
	CodeIO              Code = -4
)

// CodeOf maps an error returned by this package to its Code. A nil error
// is CodeOK; unrecognized errors classify as CodeIO, matching the policy
// that anything unexpected on a file path is an I/O failure.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNilStore):
		return CodeNullArgument
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrOutOfMemory):
		return CodeOutOfMemory
	default:
		return CodeIO
	}
}

// translateArchiveError folds archive format errors into the public
// taxonomy: corrupt headers are invalid arguments, everything else on the
// load path is an I/O failure.
func translateArchiveError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, archive.ErrInvalidMagic) ||
		errors.Is(err, archive.ErrInvalidVersion) ||
		errors.Is(err, archive.ErrTooManyEntries) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
