package audioseek

import "time"

// SeekPoint pairs a playback timestamp with the byte position that
// playback should resume from to hit that timestamp.
type SeekPoint struct {
	// Time is the playback timestamp of the point.
	Time time.Duration

	// Position is the byte offset in the stream.
	Position int64
}

// SeekPoints holds the one or two candidate positions a Seeker returns
// for a requested timestamp.
//
// When the mapping is exact, both points are identical and Exact()
// reports true. Otherwise First and Second bracket the interval the
// requested time falls into, for use by binary-search seek strategies.
type SeekPoints struct {
	First  SeekPoint
	Second SeekPoint
}

// Exact reports whether both candidates agree on a single position.
func (sp SeekPoints) Exact() bool {
	return sp.First == sp.Second
}

// pointAt collapses a single point into an exact SeekPoints pair.
func pointAt(p SeekPoint) SeekPoints {
	return SeekPoints{First: p, Second: p}
}

// SeekMap is the forward time-to-position mapping for an audio stream.
//
// Implementations are immutable: all methods are pure reads over state
// frozen at construction and are safe for concurrent use.
type SeekMap interface {
	// Seekable reports whether the stream supports seeking at all.
	Seekable() bool

	// Duration returns the total playback duration, if known.
	Duration() (time.Duration, bool)

	// SeekPoints maps a requested timestamp to candidate byte positions.
	// Requests outside [0, duration] clamp to the nearest boundary.
	SeekPoints(t time.Duration) SeekPoints
}

// Seeker extends SeekMap with the inverse mapping and end-of-data
// reporting. This is the contract the seek strategies in this package
// implement.
//
// Seeker is a closed set: the only implementations are the values
// returned by NewUnseekable, NewConstantBitrate, and NewIndexed.
//
// Implementations guarantee monotonicity: for positions p2 > p1 inside
// the data region, TimeAt(p2) >= TimeAt(p1).
type Seeker interface {
	SeekMap

	// TimeAt maps a byte position back to a playback timestamp.
	// Defined for every position in the data region; positions outside
	// it clamp to the nearest boundary and never panic.
	TimeAt(position int64) time.Duration

	// DataEnd returns the byte position one past the last audio byte,
	// if known. It is unknown for live or still-growing streams.
	DataEnd() (int64, bool)

	// String names the strategy ("unseekable", "constant-bitrate",
	// "indexed").
	String() string

	// sealed prevents implementations outside this package.
	sealed()
}

// Region is the byte range [Start, End) of a stream that contains audio
// frames, excluding any leading or trailing container metadata.
//
// End is meaningful only when EndKnown is true. An unknown end is a
// first-class state (live or still-downloading input), not zero.
type Region struct {
	Start    int64
	End      int64
	EndKnown bool
}

// KnownRegion returns a Region with both boundaries known.
func KnownRegion(start, end int64) Region {
	return Region{Start: start, End: end, EndKnown: true}
}

// OpenRegion returns a Region whose end position is unknown.
func OpenRegion(start int64) Region {
	return Region{Start: start}
}

// Size returns End-Start when the end position is known.
func (r Region) Size() (int64, bool) {
	if !r.EndKnown {
		return 0, false
	}
	return r.End - r.Start, true
}
