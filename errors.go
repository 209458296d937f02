package audioseek

import (
	"errors"
	"fmt"
)

// ErrFrameNotFound reports that a resynchronization scan exhausted its
// window without recognizing a frame boundary. Use errors.Is against
// errors returned by Resynchronizer.Resync and Stream.SeekTo.
var ErrFrameNotFound = errors.New("no frame boundary found")

// InvalidBitrateError is returned when a constant-bitrate seeker is
// constructed with a non-positive rate.
type InvalidBitrateError struct {
	BytesPerSecond int64
}

func (e *InvalidBitrateError) Error() string {
	return fmt.Sprintf("constant-bitrate seeker requires a positive rate, got %d bytes/sec", e.BytesPerSecond)
}

// InvalidTableError is returned when an indexed seeker is constructed
// from a malformed progress table. Index is the offending entry, or -1
// when the problem is not entry-specific.
type InvalidTableError struct {
	Index  int
	Reason string
}

func (e *InvalidTableError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid seek table: %s", e.Reason)
	}
	return fmt.Sprintf("invalid seek table entry %d: %s", e.Index, e.Reason)
}

// UnsupportedFormatError is returned when a stream's format is not
// recognized by any probe.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// ResyncError reports a failed resynchronization scan: no valid frame
// header was found within the scan window starting at Start.
//
// ResyncError matches ErrFrameNotFound with errors.Is. It is a distinct
// seek-failure outcome, not a fatal condition; the caller decides
// whether to retry with a different target or stay put.
type ResyncError struct {
	// Start is the position the scan began at.
	Start int64

	// Scanned is the number of bytes examined before giving up.
	Scanned int64
}

func (e *ResyncError) Error() string {
	return fmt.Sprintf("resync: no frame boundary within %d bytes of offset %d", e.Scanned, e.Start)
}

func (e *ResyncError) Unwrap() error {
	return ErrFrameNotFound
}

// Warning represents a non-fatal issue found while probing a stream.
//
// Warnings indicate problems that don't prevent building a seeker but
// may degrade seek accuracy. Examples include:
//   - A VBR header without a frame count
//   - A progress table that had to be discarded
//   - Falling back to a coarser seek strategy
//
// Warnings are collected in Stream.Warnings during Open.
type Warning struct {
	// Stage where the warning occurred ("probe", "seeker")
	Stage string

	// Warning message
	Message string

	// Stream offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
