// Package archive implements the binary persistence format for score
// snapshots and the atomic on-disk replacement protocol.
//
// The on-disk layout is little-endian and packed:
//
//	offset 0:  magic "SAUR"
//	offset 4:  uint32 version (currently 1)
//	offset 8:  uint64 entry count
//	offset 16: entries, 6 bytes each (uint32 IP, int16 score)
//
// Scores of zero are never written. Saves go through a sibling temporary
// file that is atomically renamed over the target, so readers observe
// either the previous archive or the complete new one, never a torn write.
package archive

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer streams entries into an archive. Entries pass through an internal
// batch buffer; Finalize flushes it and patches the entry count into the
// header.
type Writer struct {
	f     *os.File
	buf   []byte
	count uint64
}

// NewWriter writes a header with a placeholder entry count to f and
// returns a Writer appending entries after it.
func NewWriter(f *os.File) (*Writer, error) {
	var hdr [HeaderSize]byte
	copy(hdr[0:4], magic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], Version)
	binary.LittleEndian.PutUint64(hdr[8:16], 0)
	if _, err := f.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("archive: write header: %w", err)
	}
	return &Writer{
		f:   f,
		buf: make([]byte, 0, batchEntries*EntrySize),
	}, nil
}

// Append adds one entry. Zero scores are not written; the archive encodes
// only present state.
func (w *Writer) Append(ip uint32, score int16) error {
	if score == 0 {
		return nil
	}

	var entry [EntrySize]byte
	binary.LittleEndian.PutUint32(entry[0:4], ip)
	binary.LittleEndian.PutUint16(entry[4:6], uint16(score))
	w.buf = append(w.buf, entry[:]...)
	w.count++

	if len(w.buf) >= batchEntries*EntrySize {
		return w.flush()
	}
	return nil
}

// Count returns the number of entries appended so far.
func (w *Writer) Count() uint64 {
	return w.count
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if _, err := w.f.Write(w.buf); err != nil {
		return fmt.Errorf("archive: write entries: %w", err)
	}
	w.buf = w.buf[:0]
	return nil
}

// Finalize flushes buffered entries and rewrites the header's entry count
// with the real value. The Writer must not be used afterwards.
func (w *Writer) Finalize() error {
	if err := w.flush(); err != nil {
		return err
	}
	if _, err := w.f.Seek(8, io.SeekStart); err != nil {
		return fmt.Errorf("archive: seek to entry count: %w", err)
	}
	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], w.count)
	if _, err := w.f.Write(count[:]); err != nil {
		return fmt.Errorf("archive: rewrite entry count: %w", err)
	}
	return nil
}

// Reader decodes an archive from a stream after validating its header.
type Reader struct {
	r     io.Reader
	count uint64
	read  uint64
}

// NewReader validates the header on r and returns a Reader positioned at
// the first entry.
func NewReader(r io.Reader) (*Reader, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("archive: read header: %w", err)
	}
	if [4]byte(hdr[0:4]) != magic {
		return nil, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(hdr[4:8])
	if version == 0 || version > Version {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}
	count := binary.LittleEndian.Uint64(hdr[8:16])
	if count > MaxEntries {
		return nil, fmt.Errorf("%w: %d", ErrTooManyEntries, count)
	}
	return &Reader{r: r, count: count}, nil
}

// Count returns the entry count declared by the header.
func (r *Reader) Count() uint64 {
	return r.count
}

// Next returns the next entry. It returns io.EOF once all declared entries
// have been read; a short file surfaces as an unexpected-EOF error.
func (r *Reader) Next() (ip uint32, score int16, err error) {
	if r.read >= r.count {
		return 0, 0, io.EOF
	}

	var entry [EntrySize]byte
	if _, err := io.ReadFull(r.r, entry[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, 0, fmt.Errorf("archive: read entry %d: %w", r.read, err)
	}
	r.read++

	ip = binary.LittleEndian.Uint32(entry[0:4])
	score = int16(binary.LittleEndian.Uint16(entry[4:6]))
	return ip, score, nil
}

// Save writes an archive to path using the temp-and-rename protocol: the
// write callback streams entries into a sibling temporary file named
// "<path>.tmp.<pid>", which is synced and atomically renamed over the
// target. On any failure the temporary file is unlinked and the previous
// archive, if one exists, is left untouched.
func Save(path string, write func(w *Writer) error) error {
	tmpName := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())

	f, err := os.OpenFile(tmpName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644) //nolint:gosec // G304: path is caller-controlled by design
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", tmpName, err)
	}
	defer func() {
		if tmpName != "" {
			_ = f.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w, err := NewWriter(f)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		return err
	}
	if err := w.Finalize(); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("archive: sync %s: %w", tmpName, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("archive: close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		tmpName = ""
		return fmt.Errorf("archive: rename %s: %w", path, err)
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(filepath.Dir(path)); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// Load opens path, validates the header and hands a Reader to read. The
// file is read through a large buffered reader.
func Load(path string, read func(r *Reader) error) error {
	f, err := os.Open(path) //nolint:gosec // G304: path is caller-controlled by design
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()

	r, err := NewReader(bufio.NewReaderSize(f, 256*1024))
	if err != nil {
		return err
	}
	return read(r)
}
