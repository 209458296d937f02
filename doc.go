// Package audioseek maps playback timestamps to byte offsets (and
// back) inside frame-based compressed audio streams.
//
// Formats like MP3 pack audio into self-describing frames with no
// global index: a frame knows its own size and duration, but nothing
// tells you where second 90 lives. audioseek reconciles the three ways
// such streams can be seeked - an embedded index table, a constant-
// bitrate estimate, and an explicit "cannot seek" state - behind one
// uniform contract, and realigns every estimate to a true frame
// boundary so playback never resumes mid-frame.
//
// # Quick Start
//
// Seeking into an audio file:
//
//	stream, err := audioseek.Open("song.mp3")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer stream.Close()
//
//	result, err := stream.SeekTo(ctx, 90*time.Second)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("resume at byte %d (t=%s)\n", result.Position, result.Time)
//
// # Seek Strategies
//
// Exactly one strategy is chosen per stream, when Open probes the
// stream head, and it never changes afterward:
//
//   - Indexed: the stream embeds a sparse progress table (an MP3 Xing
//     TOC). Positions come from linear interpolation between table
//     knots.
//   - Constant-bitrate: no table, but a known or implied average byte
//     rate. Positions come from linear extrapolation.
//   - Unseekable: no table, no usable rate, unknown duration. Every
//     seek collapses to the start of the audio data.
//
// All three implement [Seeker]; callers never branch on the variant.
//
// # Resynchronization
//
// Table interpolation and bitrate extrapolation are estimates: they
// can land mid-frame. Every SeekTo therefore scans forward from the
// estimate until the frame recognizer accepts a header, and reports
// the timestamp of that frame - not the requested time. The reported
// time may differ from the request by up to one frame duration; it is
// the truth, and the request was the approximation.
//
// # Philosophy
//
// audioseek follows three principles:
//
// 1. Graceful Degradation: a damaged seek table downgrades the stream
// to constant-bitrate seeking with a warning, not an error. Check
// Stream.Warnings when accuracy matters.
//
// 2. Unknown Is a Value: durations and end positions that cannot be
// determined are reported as explicitly unknown, never coerced to
// zero. A live stream has no length; pretending otherwise corrupts
// every downstream calculation.
//
// 3. Frozen After Construction: a Seeker is built once and never
// mutated. All queries are pure reads, safe from any number of
// goroutines without synchronization.
//
// # Error Handling
//
// Construction-time problems (a non-positive bitrate, a non-monotonic
// table) fail fast with typed errors; Open responds by degrading to a
// coarser strategy. A failed resynchronization scan is a distinct,
// recoverable outcome: errors.Is(err, ErrFrameNotFound) identifies it,
// and the stream stays at its last good position.
package audioseek
