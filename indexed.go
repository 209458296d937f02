package audioseek

import (
	"math"
	"sort"
	"time"
)

// TableEntry is one knot of a sparse progress table: at TimeFraction of
// the total duration, playback has consumed ByteFraction of the audio
// data. Both coordinates lie in [0, 1].
type TableEntry struct {
	TimeFraction float64
	ByteFraction float64
}

// indexedSeeker interpolates over a sparse progress table embedded in
// the stream, typical of variable-bitrate encodings that self-describe
// an approximate index (an MP3 Xing TOC, for example).
type indexedSeeker struct {
	// table includes the implicit (0,0) and (1,1) endpoints, frozen at
	// construction.
	table    []TableEntry
	duration time.Duration
	region   Region
	size     int64
}

// NewIndexed returns a Seeker that interpolates over the given progress
// table.
//
// The table must be ordered and non-decreasing in both coordinates,
// with every coordinate in [0, 1]; the endpoints (0,0) and (1,1) are
// implicit and must not be supplied. Both the total duration and the
// region's end position must be known. Invalid input fails with an
// InvalidTableError; callers should substitute a different variant.
//
// The table is copied; the returned Seeker never mutates after
// construction.
func NewIndexed(table []TableEntry, duration time.Duration, region Region) (Seeker, error) {
	if duration <= 0 {
		return nil, &InvalidTableError{Index: -1, Reason: "table requires a known positive duration"}
	}
	size, ok := region.Size()
	if !ok {
		return nil, &InvalidTableError{Index: -1, Reason: "table requires a known data end position"}
	}
	if size <= 0 {
		return nil, &InvalidTableError{Index: -1, Reason: "empty data region"}
	}

	frozen := make([]TableEntry, 0, len(table)+2)
	frozen = append(frozen, TableEntry{0, 0})
	prev := frozen[0]
	for i, e := range table {
		if e.TimeFraction < 0 || e.TimeFraction > 1 || e.ByteFraction < 0 || e.ByteFraction > 1 {
			return nil, &InvalidTableError{Index: i, Reason: "fraction outside [0,1]"}
		}
		if e.TimeFraction < prev.TimeFraction || e.ByteFraction < prev.ByteFraction {
			return nil, &InvalidTableError{Index: i, Reason: "table not monotonic"}
		}
		frozen = append(frozen, e)
		prev = e
	}
	frozen = append(frozen, TableEntry{1, 1})

	return &indexedSeeker{
		table:    frozen,
		duration: duration,
		region:   region,
		size:     size,
	}, nil
}

func (s *indexedSeeker) Seekable() bool {
	return true
}

func (s *indexedSeeker) Duration() (time.Duration, bool) {
	return s.duration, true
}

// SeekPoints maps t to a best-effort position by linear interpolation
// between the bracketing table knots. The table is approximate, so the
// result is a single estimate (not an exact seek) and should be
// reconciled against a real frame boundary by a Resynchronizer.
func (s *indexedSeeker) SeekPoints(t time.Duration) SeekPoints {
	if t <= 0 {
		return pointAt(SeekPoint{Time: 0, Position: s.region.Start})
	}
	if t >= s.duration {
		return pointAt(SeekPoint{Time: s.duration, Position: s.region.End})
	}

	tf := float64(t) / float64(s.duration)
	i := sort.Search(len(s.table), func(i int) bool {
		return s.table[i].TimeFraction >= tf
	})
	// tf > 0 and table[0].TimeFraction == 0, so i >= 1.
	e0, e1 := s.table[i-1], s.table[i]

	g := e0.ByteFraction
	if e1.TimeFraction > e0.TimeFraction {
		g += (e1.ByteFraction - e0.ByteFraction) * (tf - e0.TimeFraction) / (e1.TimeFraction - e0.TimeFraction)
	}

	pos := s.region.Start + int64(math.Round(g*float64(s.size)))
	pos = s.clampPosition(pos)
	return pointAt(SeekPoint{Time: t, Position: pos})
}

// TimeAt recovers a timestamp from a byte position by the inverse
// interpolation: bracket by byte fraction, interpolate back to a time
// fraction, scale by the duration.
func (s *indexedSeeker) TimeAt(position int64) time.Duration {
	position = s.clampPosition(position)
	bf := float64(position-s.region.Start) / float64(s.size)

	i := sort.Search(len(s.table), func(i int) bool {
		return s.table[i].ByteFraction >= bf
	})
	if i == 0 {
		return 0
	}
	e0, e1 := s.table[i-1], s.table[i]

	tf := e0.TimeFraction
	if e1.ByteFraction > e0.ByteFraction {
		tf += (e1.TimeFraction - e0.TimeFraction) * (bf - e0.ByteFraction) / (e1.ByteFraction - e0.ByteFraction)
	}

	return time.Duration(tf * float64(s.duration))
}

func (s *indexedSeeker) DataEnd() (int64, bool) {
	return s.region.End, true
}

func (s *indexedSeeker) String() string {
	return "indexed"
}

func (s *indexedSeeker) sealed() {}

func (s *indexedSeeker) clampPosition(pos int64) int64 {
	if pos < s.region.Start {
		return s.region.Start
	}
	if pos > s.region.End {
		return s.region.End
	}
	return pos
}
