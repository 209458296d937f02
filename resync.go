package audioseek

import (
	"context"
	"time"

	"github.com/simonhull/audioseek/internal/source"
)

const (
	// DefaultScanWindow is the default number of bytes a resync scan
	// examines before giving up. It covers several seconds of audio at
	// the highest common MP3 bitrate.
	DefaultScanWindow = 1 << 20

	// DefaultChunkSize is the default read granularity of the scan.
	DefaultChunkSize = 32 * 1024
)

// FrameHeader describes a recognized frame boundary.
type FrameHeader struct {
	// Size is the full frame length in bytes, header included.
	Size int

	// Duration is the playback time the frame covers.
	Duration time.Duration
}

// FrameReader recognizes frame boundaries in raw bytes. It is the
// capability the Resynchronizer scans with; format packages provide
// concrete implementations.
type FrameReader interface {
	// TryReadFrameHeader reports whether data begins with a valid frame
	// header. It must not mutate data and must fail (not panic) when
	// data is shorter than MinHeaderSize.
	TryReadFrameHeader(data []byte) (FrameHeader, bool)

	// MinHeaderSize is the number of bytes needed to recognize a header.
	MinHeaderSize() int
}

// SeekResult is the authoritative outcome of a seek: the byte position
// of a real frame boundary and the timestamp the stream actually lands
// on, which may differ from the requested time by up to one frame.
type SeekResult struct {
	Position int64
	Time     time.Duration
	Frame    FrameHeader
}

// Resynchronizer realigns estimated byte offsets to true frame
// boundaries.
//
// Every seek strategy except an exact per-frame index produces
// estimates that may land mid-frame. The resynchronizer scans forward
// from the estimate (never backward, keeping seek targets monotonic and
// avoiding re-reads of consumed data) until the frame recognizer
// accepts a header, then recomputes the landing timestamp through the
// active Seeker.
//
// Tune ScanWindow and ChunkSize before first use; a Resynchronizer must
// not be reconfigured while a scan is in flight.
type Resynchronizer struct {
	// ScanWindow bounds the scan in bytes. Zero selects DefaultScanWindow.
	ScanWindow int64

	// ChunkSize is the read granularity. Zero selects DefaultChunkSize.
	ChunkSize int

	src    *source.Reader
	frames FrameReader
	seeker Seeker
}

// NewResynchronizer returns a Resynchronizer scanning src with the
// given frame recognizer, reporting timestamps through seeker.
func NewResynchronizer(src *source.Reader, frames FrameReader, seeker Seeker) *Resynchronizer {
	return &Resynchronizer{src: src, frames: frames, seeker: seeker}
}

// Resync scans forward from estimate to the next valid frame boundary.
//
// On success the returned position is authoritative and the timestamp
// is recomputed via the Seeker's TimeAt on that position - not the
// originally requested time. On failure it returns a ResyncError
// (matching ErrFrameNotFound) and reports nothing; the caller decides
// whether to stay at its last good position or retry elsewhere.
//
// The scan performs blocking reads and honors ctx between chunks: a
// superseded seek can cancel it, discarding any partially scanned
// state without reporting a timestamp.
func (r *Resynchronizer) Resync(ctx context.Context, estimate int64) (SeekResult, error) {
	window := r.ScanWindow
	if window <= 0 {
		window = DefaultScanWindow
	}
	chunk := r.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	minHeader := r.frames.MinHeaderSize()
	if minHeader < 1 {
		minHeader = 1
	}

	// Never scan before the start of audio data.
	if start := r.seeker.SeekPoints(0).First.Position; estimate < start {
		estimate = start
	}

	limit := estimate + window
	if length, ok := r.src.Length(); ok && limit > length {
		limit = length
	}

	buf := make([]byte, chunk+minHeader-1)
	pos := estimate
	for pos < limit {
		if err := ctx.Err(); err != nil {
			return SeekResult{}, err
		}

		n, readErr := r.src.ReadAtMost(buf, pos)
		if n < minHeader {
			break
		}

		// Candidate offsets that still leave a full header in buf.
		// Overlap of minHeader-1 bytes keeps headers spanning a chunk
		// boundary recognizable on the next read.
		candidates := n - minHeader + 1
		for i := 0; i < candidates && pos+int64(i) < limit; i++ {
			hdr, ok := r.frames.TryReadFrameHeader(buf[i:n])
			if !ok {
				continue
			}
			found := pos + int64(i)
			return SeekResult{
				Position: found,
				Time:     r.seeker.TimeAt(found),
				Frame:    hdr,
			}, nil
		}

		pos += int64(candidates)
		if pos > limit {
			pos = limit
		}
		if readErr != nil {
			break
		}
	}

	return SeekResult{}, &ResyncError{Start: estimate, Scanned: pos - estimate}
}
