package cursor

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// Compression selects how Open treats the file contents.
type Compression string

const (
	CompressionAuto Compression = "auto"
	CompressionGzip Compression = "gzip"
	CompressionNone Compression = "none"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Source is an opened feed file.
type Source struct {
	io.Reader
	file *os.File
	gz   *gzip.Reader
}

// Open opens path for reading and, depending on mode, wraps it in a gzip
// reader. CompressionAuto sniffs the gzip magic bytes.
func Open(path string, mode Compression) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}

	src, err := wrap(f, mode)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.file = f
	return src, nil
}

// NewSource wraps an already open reader, as Open does for files.
func NewSource(r io.Reader, mode Compression) (*Source, error) {
	return wrap(r, mode)
}

func wrap(r io.Reader, mode Compression) (*Source, error) {
	br := bufio.NewReader(r)

	useGzip := false
	switch mode {
	case CompressionGzip:
		useGzip = true
	case CompressionNone:
	case CompressionAuto, "":
		head, err := br.Peek(len(gzipMagic))
		if err == nil && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
			useGzip = true
		}
	default:
		return nil, fmt.Errorf("unknown compression %q", mode)
	}

	if !useGzip {
		return &Source{Reader: br}, nil
	}

	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	return &Source{Reader: gz, gz: gz}, nil
}

// Compressed reports whether the source is being gunzipped.
func (s *Source) Compressed() bool {
	return s.gz != nil
}

// Close releases the gzip reader and the underlying file.
func (s *Source) Close() error {
	var firstErr error
	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			firstErr = err
		}
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
