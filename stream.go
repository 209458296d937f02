package audioseek

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/audioseek/internal/mp3"
	"github.com/simonhull/audioseek/internal/source"
)

// Stream is an opened audio stream with a seek strategy attached.
//
// The strategy (Seeker) is chosen exactly once, while Open probes the
// stream head, and is immutable afterward: all Seeker queries are pure
// reads and safe from any number of goroutines. SeekTo performs
// blocking I/O and tracks a current position, so call it from one
// goroutine at a time.
//
// Always call Close() when done to release the underlying file:
//
//	stream, err := audioseek.Open("song.mp3")
//	if err != nil {
//		return err
//	}
//	defer stream.Close()
type Stream struct {
	// Path to the audio file (empty for OpenReader streams).
	Path string

	// Seeker is the strategy chosen for this stream.
	Seeker Seeker

	// Warnings encountered while probing (non-fatal issues).
	Warnings []Warning

	reader  io.ReaderAt
	src     *source.Reader
	resync  *Resynchronizer
	current SeekResult
}

// Open opens an audio file and chooses a seek strategy for it.
//
// The stream head is probed for an embedded seek index; the richest
// available strategy wins. A stream with a usable index seeks by
// interpolation, one with only a bitrate seeks by extrapolation, and
// one with neither still opens but reports Seekable() false.
//
// If the index is damaged, Open degrades to a coarser strategy and
// records what happened in Stream.Warnings instead of failing. Check
// Warnings when seek accuracy matters:
//
//	stream, err := audioseek.Open("song.mp3")
//	if err != nil {
//		return err
//	}
//	defer stream.Close()
//	for _, w := range stream.Warnings {
//		log.Printf("warning: %s", w)
//	}
func Open(path string, opts ...Option) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	stream, err := openSource(f, source.New(f, stat.Size(), path), opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	stream.Path = path

	return stream, nil
}

// OpenReader opens a stream from an io.ReaderAt.
//
// Pass a negative size for streams whose total length is unknown (live
// or still-downloading input); the data end position then stays
// unknown unless the stream itself declares its size.
func OpenReader(r io.ReaderAt, size int64, name string, opts ...Option) (*Stream, error) {
	src := source.NewUnsized(r, name)
	if size >= 0 {
		src = source.New(r, size, name)
	}
	return openSource(r, src, opts)
}

// openSource probes the stream and freezes a seek strategy for it.
func openSource(r io.ReaderAt, src *source.Reader, opts []Option) (*Stream, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	info, probeWarnings, err := mp3.Probe(src)
	if err != nil {
		return nil, &UnsupportedFormatError{Path: src.Name(), Reason: err.Error()}
	}

	warnings := make([]Warning, 0, len(probeWarnings))
	for _, msg := range probeWarnings {
		warnings = append(warnings, Warning{Stage: "probe", Message: msg})
	}

	seeker, selectionWarnings := chooseSeeker(info, options)
	warnings = append(warnings, selectionWarnings...)

	if options.strictProbe && len(warnings) > 0 {
		return nil, fmt.Errorf("strict probe failed: %s", warnings[0].Message)
	}

	resync := NewResynchronizer(src, mp3Frames{}, seeker)
	resync.ScanWindow = options.scanWindow
	resync.ChunkSize = options.chunkSize

	return &Stream{
		Seeker:   seeker,
		Warnings: warnings,
		reader:   r,
		src:      src,
		resync:   resync,
		current:  SeekResult{Position: info.DataStart},
	}, nil
}

// chooseSeeker picks the richest strategy the probed metadata supports,
// degrading with a warning whenever construction rejects its input.
func chooseSeeker(info mp3.Info, options *openOptions) (Seeker, []Warning) {
	var warnings []Warning

	region := OpenRegion(info.DataStart)
	if info.DataEndKnown {
		region = KnownRegion(info.DataStart, info.DataEnd)
	}

	if info.TOC != nil && !options.assumeCBR {
		seeker, err := NewIndexed(tableFromTOC(info.TOC), info.Duration, region)
		if err == nil {
			return seeker, warnings
		}
		warnings = append(warnings, Warning{
			Stage:   "seeker",
			Message: fmt.Sprintf("seek table rejected (%v); falling back to constant-bitrate", err),
		})
	}

	if info.BytesPerSecond > 0 {
		seeker, err := NewConstantBitrate(info.BytesPerSecond, region)
		if err == nil {
			return seeker, warnings
		}
		warnings = append(warnings, Warning{
			Stage:   "seeker",
			Message: fmt.Sprintf("constant-bitrate rejected (%v); stream is unseekable", err),
		})
	}

	return NewUnseekable(region), warnings
}

// tableFromTOC converts a probe's byte-fraction table into progress
// table entries: entry i sits at time fraction i/len(toc).
func tableFromTOC(toc []float64) []TableEntry {
	table := make([]TableEntry, len(toc))
	for i, g := range toc {
		table[i] = TableEntry{
			TimeFraction: float64(i) / float64(len(toc)),
			ByteFraction: g,
		}
	}
	return table
}

// SeekTo maps a requested timestamp to a frame-aligned byte position.
//
// The strategy's estimate is realigned to the next true frame boundary
// and the returned SeekResult carries the landing timestamp, which may
// differ from t by up to one frame. On resynchronization failure (a
// ResyncError, matching ErrFrameNotFound) the stream stays at its last
// good position, available via Position().
//
// A seek superseded by a newer request can be cancelled through ctx;
// a cancelled seek reports no timestamp and moves nothing.
func (s *Stream) SeekTo(ctx context.Context, t time.Duration) (SeekResult, error) {
	if !s.Seeker.Seekable() {
		// Every seek on an unseekable stream collapses to the start of
		// the audio data.
		s.current = SeekResult{Position: s.Seeker.SeekPoints(0).First.Position}
		return s.current, nil
	}

	points := s.Seeker.SeekPoints(t)
	result, err := s.resync.Resync(ctx, points.First.Position)
	if err != nil {
		return SeekResult{}, err
	}

	s.current = result
	return result, nil
}

// Position returns the last frame-aligned position successfully seeked
// to, or the start of the audio data if no seek has completed yet.
func (s *Stream) Position() SeekResult {
	return s.current
}

// Close releases resources held by the stream.
//
// After Close is called, the Stream should not be used.
func (s *Stream) Close() error {
	if closer, ok := s.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// OpenMany opens multiple audio streams concurrently.
//
// Streams are probed in parallel using up to runtime.NumCPU()
// goroutines. Results are returned in the same order as the input
// paths.
//
// If any stream fails to open, all successfully opened streams are
// closed and an error is returned.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	streams, err := audioseek.OpenMany(ctx, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer func() {
//		for _, s := range streams {
//			s.Close()
//		}
//	}()
func OpenMany(ctx context.Context, paths ...string) ([]*Stream, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU()) // Limit concurrent operations

	results := make([]*Stream, len(paths))

	for i, path := range paths {
		i, path := i, path // Capture loop variables
		g.Go(func() error {
			// Check for cancellation
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			stream, err := Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = stream
			return nil
		})
	}

	// Wait for all to complete
	if err := g.Wait(); err != nil {
		// Close any successfully opened streams
		for _, stream := range results {
			if stream != nil {
				stream.Close()
			}
		}
		return nil, err
	}

	return results, nil
}

// mp3Frames adapts the MP3 header recognizer to the FrameReader
// capability.
type mp3Frames struct{}

func (mp3Frames) TryReadFrameHeader(data []byte) (FrameHeader, bool) {
	hdr, ok := mp3.ParseHeader(data)
	if !ok {
		return FrameHeader{}, false
	}
	return FrameHeader{Size: hdr.Size, Duration: hdr.Duration}, true
}

func (mp3Frames) MinHeaderSize() int {
	return mp3.HeaderSize
}
