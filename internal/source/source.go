// Package source provides bounds-checked random access over audio byte
// streams, including streams whose total length is unknown.
package source

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Reader wraps io.ReaderAt with bounds checking, helpful error
// messages, and an optional total length. A Reader without a known
// length models live or still-downloading input.
type Reader struct {
	r     io.ReaderAt
	name  string
	size  int64
	sized bool
}

// New creates a Reader over a stream of known length.
func New(r io.ReaderAt, size int64, name string) *Reader {
	return &Reader{r: r, name: name, size: size, sized: true}
}

// NewUnsized creates a Reader over a stream whose length is unknown.
func NewUnsized(r io.ReaderAt, name string) *Reader {
	return &Reader{r: r, name: name}
}

// Name returns the stream name associated with this reader.
func (s *Reader) Name() string {
	return s.name
}

// Length returns the total stream length, if known.
func (s *Reader) Length() (int64, bool) {
	if !s.sized {
		return 0, false
	}
	return s.size, true
}

// ReadAt fills b from the given offset, with context for error
// messages. A short read is an error.
func (s *Reader) ReadAt(b []byte, off int64, what string) error {
	if off < 0 {
		return fmt.Errorf("%s: negative offset %d while reading %s", s.name, off, what)
	}
	if s.sized {
		if off >= s.size {
			return fmt.Errorf("%s: offset %d out of bounds (stream size: %d) while reading %s",
				s.name, off, s.size, what)
		}
		if off+int64(len(b)) > s.size {
			return fmt.Errorf("%s: read of %d bytes at offset %d would exceed stream size %d while reading %s",
				s.name, len(b), off, s.size, what)
		}
	}

	n, err := s.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", s.name, what, off, err)
	}
	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			s.name, what, off, n, len(b))
	}
	return nil
}

// ReadAtMost reads up to len(b) bytes at the given offset. Unlike
// ReadAt, a partial read near end-of-stream is not an error: it
// returns the bytes available along with io.EOF. Intended for scan
// loops that handle their own progress.
func (s *Reader) ReadAtMost(b []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%s: negative offset %d", s.name, off)
	}
	if s.sized {
		if off >= s.size {
			return 0, io.EOF
		}
		if remaining := s.size - off; int64(len(b)) > remaining {
			b = b[:remaining]
		}
	}

	n, err := s.r.ReadAt(b, off)
	if err == io.EOF && n > 0 {
		return n, io.EOF
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%s: read at offset %d: %w", s.name, off, err)
	}
	return n, err
}

// ReadBE reads a big-endian value of type T from the given offset.
func ReadBE[T uint8 | uint16 | uint32 | uint64](s *Reader, off int64, what string) (T, error) {
	var zero T
	var size int

	switch any(zero).(type) {
	case uint8:
		size = 1
	case uint16:
		size = 2
	case uint32:
		size = 4
	case uint64:
		size = 8
	}

	buf := make([]byte, size)
	if err := s.ReadAt(buf, off, what); err != nil {
		return zero, err
	}

	var val T
	switch any(zero).(type) {
	case uint8:
		val = T(buf[0])
	case uint16:
		val = T(binary.BigEndian.Uint16(buf))
	case uint32:
		val = T(binary.BigEndian.Uint32(buf))
	case uint64:
		val = T(binary.BigEndian.Uint64(buf))
	}

	return val, nil
}
