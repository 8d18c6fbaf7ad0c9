// Package source adapts heterogeneous inputs (files, byte slices, strings,
// in-memory readers) into a single seekable byte source with a fixed length.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnsupported is returned by New for input types it cannot adapt.
var ErrUnsupported = errors.New("unsupported source type")

// Source is a readable, seekable byte source of known, fixed length.
// The length is captured once at construction and never re-queried;
// a source that shrinks afterwards surfaces as a read failure.
type Source interface {
	io.Reader
	io.Seeker
	io.Closer

	// Size returns the total length of the source in bytes.
	Size() int64
}

// New adapts a supported input value into a Source. Supported inputs:
// *os.File, string (path is NOT implied; the string content itself is the
// source), []byte, *bytes.Reader and *strings.Reader. Anything else fails
// with ErrUnsupported.
func New(v any) (Source, error) {
	switch src := v.(type) {
	case *os.File:
		return FromFile(src)
	case []byte:
		return FromBytes(src), nil
	case string:
		return FromString(src), nil
	case *bytes.Reader:
		return &readerSource{r: src, size: src.Size()}, nil
	case *strings.Reader:
		return &readerSource{r: src, size: src.Size()}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}

// Open opens the file at path and adapts it into a Source.
// Closing the Source closes the file.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	src, err := FromFile(f)
	if err != nil {
		f.Close()

		return nil, err
	}

	return src, nil
}

// FromFile adapts an open file handle. The file size is captured once here.
func FromFile(f *os.File) (Source, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	return &fileSource{f: f, size: info.Size()}, nil
}

// FromBytes adapts an in-memory byte sequence.
func FromBytes(b []byte) Source {
	return &readerSource{r: bytes.NewReader(b), size: int64(len(b))}
}

// FromString adapts a text string, treated as raw bytes.
func FromString(s string) Source {
	return &readerSource{r: strings.NewReader(s), size: int64(len(s))}
}

type fileSource struct {
	f    *os.File
	size int64
}

func (s *fileSource) Read(p []byte) (int, error) { return s.f.Read(p) }

func (s *fileSource) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *fileSource) Close() error { return s.f.Close() }

func (s *fileSource) Size() int64 { return s.size }

// readerSource wraps an in-memory ReadSeeker; Close is a no-op since there
// is no underlying handle to release.
type readerSource struct {
	r    io.ReadSeeker
	size int64
}

func (s *readerSource) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *readerSource) Seek(offset int64, whence int) (int64, error) {
	return s.r.Seek(offset, whence)
}

func (s *readerSource) Close() error { return nil }

func (s *readerSource) Size() int64 { return s.size }
