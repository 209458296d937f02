package audioseek

import "time"

// unseekableSeeker represents total inability to seek: no index, no
// usable bitrate, unknown duration. Every query collapses to the start
// of the data region.
type unseekableSeeker struct {
	dataStart int64
}

// NewUnseekable returns the Seeker for streams that cannot be seeked.
//
// The region's start position is the only information it carries; the
// end position is reported as unknown even if the caller knows it,
// since without a mapping it cannot anchor any timestamp.
func NewUnseekable(region Region) Seeker {
	return &unseekableSeeker{dataStart: region.Start}
}

func (s *unseekableSeeker) Seekable() bool {
	return false
}

func (s *unseekableSeeker) Duration() (time.Duration, bool) {
	return 0, false
}

// SeekPoints collapses every request to the start of the stream.
func (s *unseekableSeeker) SeekPoints(t time.Duration) SeekPoints {
	return pointAt(SeekPoint{Time: 0, Position: s.dataStart})
}

// TimeAt always reports zero: with no mapping available there is no
// information to do otherwise.
func (s *unseekableSeeker) TimeAt(position int64) time.Duration {
	return 0
}

// DataEnd is always unknown. Reporting zero here would wrongly claim an
// empty stream.
func (s *unseekableSeeker) DataEnd() (int64, bool) {
	return 0, false
}

func (s *unseekableSeeker) String() string {
	return "unseekable"
}

func (s *unseekableSeeker) sealed() {}
