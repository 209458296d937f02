package audioseek

import "time"

const microsPerSecond = 1_000_000

// cbrSeeker maps time to position by linear extrapolation from an
// average byte rate. Used when the stream declares (or the first frame
// implies) a fixed bitrate and no richer index is present.
type cbrSeeker struct {
	bytesPerSecond int64
	region         Region
}

// NewConstantBitrate returns a Seeker that extrapolates linearly from
// bytesPerSecond across the given data region.
//
// The region's end position may be unknown (live input); seeking still
// works, but Duration() is then unknown and forward estimates are not
// clamped. A non-positive rate fails with an InvalidBitrateError;
// callers should substitute NewUnseekable.
func NewConstantBitrate(bytesPerSecond int64, region Region) (Seeker, error) {
	if bytesPerSecond <= 0 {
		return nil, &InvalidBitrateError{BytesPerSecond: bytesPerSecond}
	}
	return &cbrSeeker{bytesPerSecond: bytesPerSecond, region: region}, nil
}

func (s *cbrSeeker) Seekable() bool {
	return true
}

func (s *cbrSeeker) Duration() (time.Duration, bool) {
	size, ok := s.region.Size()
	if !ok {
		return 0, false
	}
	return s.timeFor(size), true
}

// SeekPoints returns the single exact position for t. The point's time
// is recomputed from the clamped position, so it may be earlier than t
// when t lies beyond the end of the data region.
func (s *cbrSeeker) SeekPoints(t time.Duration) SeekPoints {
	if t < 0 {
		t = 0
	}
	pos := s.region.Start + t.Microseconds()*s.bytesPerSecond/microsPerSecond
	if s.region.EndKnown && pos >= s.region.End {
		pos = s.region.End - 1
		if pos < s.region.Start {
			pos = s.region.Start
		}
	}
	return pointAt(SeekPoint{Time: s.TimeAt(pos), Position: pos})
}

// TimeAt maps a byte position to the timestamp a constant-rate stream
// reaches it at. Positions outside the data region clamp to its
// boundaries.
func (s *cbrSeeker) TimeAt(position int64) time.Duration {
	consumed := position - s.region.Start
	if consumed < 0 {
		consumed = 0
	}
	if size, ok := s.region.Size(); ok && consumed > size {
		consumed = size
	}
	return s.timeFor(consumed)
}

func (s *cbrSeeker) DataEnd() (int64, bool) {
	if !s.region.EndKnown {
		return 0, false
	}
	return s.region.End, true
}

func (s *cbrSeeker) String() string {
	return "constant-bitrate"
}

func (s *cbrSeeker) sealed() {}

// timeFor converts a byte count into playback time at the fixed rate,
// in whole microseconds rounded toward zero.
func (s *cbrSeeker) timeFor(bytes int64) time.Duration {
	us := bytes * microsPerSecond / s.bytesPerSecond
	return time.Duration(us) * time.Microsecond
}
