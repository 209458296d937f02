package audioseek_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simonhull/audioseek"
)

func TestUnseekable_Invariants(t *testing.T) {
	seeker := audioseek.NewUnseekable(audioseek.OpenRegion(512))

	assert.False(t, seeker.Seekable())

	_, ok := seeker.Duration()
	assert.False(t, ok, "duration must be unknown")

	t.Run("every position reports time zero", func(t *testing.T) {
		for _, pos := range []int64{-1, 0, 512, 1 << 40} {
			assert.Equal(t, time.Duration(0), seeker.TimeAt(pos))
		}
	})

	t.Run("data end is unknown, not zero", func(t *testing.T) {
		end, ok := seeker.DataEnd()
		assert.False(t, ok)
		// The accompanying value is meaningless, but it must never be
		// read as a real position.
		assert.Equal(t, int64(0), end)
	})

	t.Run("every seek collapses to the data start", func(t *testing.T) {
		for _, target := range []time.Duration{0, time.Second, time.Hour} {
			points := seeker.SeekPoints(target)
			assert.True(t, points.Exact())
			assert.Equal(t, int64(512), points.First.Position)
			assert.Equal(t, time.Duration(0), points.First.Time)
		}
	})
}

func TestUnseekable_IgnoresKnownEnd(t *testing.T) {
	// Even a caller who knows the stream size gets an unknown end:
	// without a mapping the size anchors nothing.
	seeker := audioseek.NewUnseekable(audioseek.KnownRegion(0, 4096))

	_, ok := seeker.DataEnd()
	assert.False(t, ok)
}
