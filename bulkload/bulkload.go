// Package bulkload ingests score changes from CSV feeds into a score
// store.
//
// Each input line names an IPv4 address and a change: an absolute set
// ("192.168.1.1,100", "10.0.0.1,-25") or a relative update
// ("192.168.1.2,+50", "10.0.0.2,+-10"). Lines starting with '#' and empty
// lines are skipped; a malformed line is counted and skipped, never fatal,
// so one bad line cannot abort a large feed.
//
// Feed files compressed with gzip, zstd or lz4 are decompressed
// transparently based on their file extension.
package bulkload

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"
)

// Applier applies parsed score changes. *ipscore.Store satisfies it.
type Applier interface {
	// Set stores an absolute score and returns the previous one.
	Set(ip uint32, score int16) int16

	// Incr adds a delta with saturation and returns the new score.
	Incr(ip uint32, delta int16) int16
}

// Result tallies the outcome of one load.
type Result struct {
	// LinesProcessed counts every physical input line, including
	// comments, blanks and malformed lines.
	LinesProcessed uint64

	// LinesSkipped counts lines dropped for parse failures. It always
	// equals ParseErrors.
	LinesSkipped uint64

	// Sets counts absolute changes applied.
	Sets uint64

	// Updates counts relative changes applied.
	Updates uint64

	// ParseErrors counts lines that failed to parse.
	ParseErrors uint64

	// Elapsed is the wall time from first input byte to last.
	Elapsed time.Duration

	// LinesPerSecond is the derived processing rate.
	LinesPerSecond float64
}

func (r *Result) add(other Result) {
	r.LinesProcessed += other.LinesProcessed
	r.LinesSkipped += other.LinesSkipped
	r.Sets += other.Sets
	r.Updates += other.Updates
	r.ParseErrors += other.ParseErrors
}

func (r *Result) finish(start time.Time) {
	r.Elapsed = time.Since(start)
	if secs := r.Elapsed.Seconds(); secs > 0 {
		r.LinesPerSecond = float64(r.LinesProcessed) / secs
	}
}

// Options configures a Loader.
type Options struct {
	// Workers is the number of goroutines used by LoadBuffer. Values
	// below 2 load sequentially. File loads are always sequential because
	// the input may be a compressed stream.
	Workers int

	// Logger receives a summary line per load. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions are the options used when none are given.
var DefaultOptions = Options{
	Workers: 1,
}

// Loader drives an Applier from CSV input. The Loader itself takes no
// locks; concurrent use is safe whenever the Applier is.
type Loader struct {
	applier Applier
	workers int
	logger  *slog.Logger
}

// New creates a Loader for the given applier.
func New(applier Applier, optFns ...func(o *Options)) *Loader {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Loader{
		applier: applier,
		workers: opts.Workers,
		logger:  opts.Logger,
	}
}

// LoadFile loads score changes from the file at path. Files ending in
// ".gz", ".zst" or ".lz4" are decompressed while streaming. An unopenable
// file is an I/O failure with nothing applied.
func (l *Loader) LoadFile(path string) (Result, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is caller-controlled by design
	if err != nil {
		return Result{}, fmt.Errorf("bulkload: open %s: %w", path, err)
	}
	defer f.Close()

	var in io.Reader = f
	switch filepath.Ext(path) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return Result{}, fmt.Errorf("bulkload: gzip %s: %w", path, err)
		}
		defer zr.Close()
		in = zr
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return Result{}, fmt.Errorf("bulkload: zstd %s: %w", path, err)
		}
		defer zr.Close()
		in = zr
	case ".lz4":
		in = lz4.NewReader(f)
	}

	start := time.Now()
	res, err := l.scan(in)
	if err != nil {
		return Result{}, fmt.Errorf("bulkload: read %s: %w", path, err)
	}
	res.finish(start)
	l.logResult(path, res)
	return res, nil
}

// LoadBuffer loads score changes from an in-memory buffer with the same
// per-line semantics as LoadFile. With more than one configured worker the
// buffer is split at line boundaries and chunks are applied concurrently;
// observers may see partial progress, as with any bulk load.
func (l *Loader) LoadBuffer(data []byte) (Result, error) {
	start := time.Now()

	var res Result
	if l.workers > 1 {
		chunks := splitChunks(data, l.workers)
		results := make([]Result, len(chunks))

		var g errgroup.Group
		for i, chunk := range chunks {
			i, chunk := i, chunk
			g.Go(func() error {
				r, err := l.scan(bytes.NewReader(chunk))
				results[i] = r
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, fmt.Errorf("bulkload: buffer: %w", err)
		}
		for _, r := range results {
			res.add(r)
		}
	} else {
		var err error
		res, err = l.scan(bytes.NewReader(data))
		if err != nil {
			return Result{}, fmt.Errorf("bulkload: buffer: %w", err)
		}
	}

	res.finish(start)
	l.logResult("(buffer)", res)
	return res, nil
}

// scan applies input line by line and tallies outcomes. Timing fields are
// left to the caller.
func (l *Loader) scan(in io.Reader) (Result, error) {
	var res Result

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Bytes()
		res.LinesProcessed++

		if len(line) == 0 || line[0] == '#' {
			continue
		}

		ip, value, relative, ok := parseLine(line)
		if !ok {
			res.ParseErrors++
			res.LinesSkipped++
			continue
		}

		if relative {
			l.applier.Incr(ip, value)
			res.Updates++
		} else {
			l.applier.Set(ip, value)
			res.Sets++
		}
	}
	if err := sc.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (l *Loader) logResult(source string, res Result) {
	if l.logger == nil {
		return
	}
	l.logger.Info("bulk load complete",
		"source", source,
		"lines", res.LinesProcessed,
		"sets", res.Sets,
		"updates", res.Updates,
		"parse_errors", res.ParseErrors,
		"elapsed", res.Elapsed,
		"lines_per_sec", int64(res.LinesPerSecond),
	)
}

// splitChunks cuts data into at most n pieces, moving each cut forward to
// the next newline so no line spans two chunks.
func splitChunks(data []byte, n int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	if n < 2 || len(data) < n {
		return [][]byte{data}
	}

	chunks := make([][]byte, 0, n)
	size := len(data) / n
	start := 0
	for i := 1; i < n && start < len(data); i++ {
		end := i * size
		if end <= start {
			continue
		}
		nl := bytes.IndexByte(data[end:], '\n')
		if nl < 0 {
			break
		}
		end += nl + 1
		chunks = append(chunks, data[start:end])
		start = end
	}
	if start < len(data) {
		chunks = append(chunks, data[start:])
	}
	return chunks
}
