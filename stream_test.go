package audioseek_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/audioseek"
)

// testFrameSize is the length of a 128 kbps, 44.1 kHz, unpadded MPEG1
// Layer III frame.
const testFrameSize = 417

// testFrameDuration is 1152 samples at 44.1 kHz.
const testFrameDuration = time.Duration(1152) * time.Second / 44100

func mp3Frame() []byte {
	frame := make([]byte, testFrameSize)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
	return frame
}

// buildCBRStream produces a plain constant-bitrate stream of n frames.
func buildCBRStream(n int) []byte {
	buf := &bytes.Buffer{}
	for i := 0; i < n; i++ {
		buf.Write(mp3Frame())
	}
	return buf.Bytes()
}

// buildXingStream produces a VBR-style stream: one Xing frame carrying
// a frame count, a byte count, and a linear seek table, followed by n
// audio frames.
func buildXingStream(n int, frameCount uint32) []byte {
	first := mp3Frame()

	// Xing marker sits after the header and the 32 bytes of stereo
	// side information.
	copy(first[36:], "Xing")
	binary.BigEndian.PutUint32(first[40:], 0x7) // frames | bytes | toc
	binary.BigEndian.PutUint32(first[44:], frameCount)
	binary.BigEndian.PutUint32(first[48:], uint32((n+1)*testFrameSize))
	for i := 0; i < 100; i++ {
		first[52+i] = byte(i * 255 / 100)
	}

	buf := &bytes.Buffer{}
	buf.Write(first)
	for i := 0; i < n; i++ {
		buf.Write(mp3Frame())
	}
	return buf.Bytes()
}

func TestOpenReader_CBRStream(t *testing.T) {
	data := buildCBRStream(20)

	stream, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "test.mp3")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "constant-bitrate", stream.Seeker.String())
	assert.Empty(t, stream.Warnings)

	// 8340 bytes at 128 kbps: 521.25ms. The estimate comes from the
	// byte size, not a frame count.
	d, ok := stream.Seeker.Duration()
	require.True(t, ok)
	assert.Equal(t, 521250*time.Microsecond, d)

	end, ok := stream.Seeker.DataEnd()
	require.True(t, ok)
	assert.Equal(t, int64(len(data)), end)
}

func TestStream_SeekToLandsOnFrameBoundary(t *testing.T) {
	data := buildCBRStream(20)

	stream, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "test.mp3")
	require.NoError(t, err)
	defer stream.Close()

	result, err := stream.SeekTo(context.Background(), 260*time.Millisecond)
	require.NoError(t, err)

	// The CBR estimate for 260ms is byte 4160, mid-frame; resync must
	// carry it forward to the next boundary.
	assert.Equal(t, int64(4170), result.Position)
	assert.Zero(t, result.Position%testFrameSize)
	assert.Equal(t, 260625*time.Microsecond, result.Time, "landing time comes from the landed position")
	assert.Equal(t, testFrameSize, result.Frame.Size)

	assert.Equal(t, result, stream.Position())
}

func TestStream_SeekToZero(t *testing.T) {
	data := buildCBRStream(5)

	stream, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "test.mp3")
	require.NoError(t, err)
	defer stream.Close()

	result, err := stream.SeekTo(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Position)
	assert.Equal(t, time.Duration(0), result.Time)
}

func TestStream_SkipsID3Tag(t *testing.T) {
	// 10-byte ID3v2 header declaring a 100-byte body.
	tag := make([]byte, 110)
	copy(tag, "ID3")
	tag[3] = 0x03
	tag[9] = 100

	data := append(tag, buildCBRStream(5)...)

	stream, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "tagged.mp3")
	require.NoError(t, err)
	defer stream.Close()

	result, err := stream.SeekTo(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(110), result.Position, "audio data starts after the ID3 tag")
}

func TestOpenReader_XingStream(t *testing.T) {
	const frameCount = 1000
	data := buildXingStream(20, frameCount)

	stream, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "vbr.mp3")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "indexed", stream.Seeker.String())
	assert.Empty(t, stream.Warnings)

	d, ok := stream.Seeker.Duration()
	require.True(t, ok)
	assert.Equal(t, frameCount*testFrameDuration, d, "duration comes from the declared frame count")

	end, ok := stream.Seeker.DataEnd()
	require.True(t, ok)
	assert.Equal(t, int64(len(data)), end)

	t.Run("table bounds", func(t *testing.T) {
		assert.Equal(t, int64(0), stream.Seeker.SeekPoints(0).First.Position)
		assert.Equal(t, int64(len(data)), stream.Seeker.SeekPoints(d).First.Position)
	})

	t.Run("seek lands on a frame boundary", func(t *testing.T) {
		result, err := stream.SeekTo(context.Background(), d/3)
		require.NoError(t, err)
		assert.Zero(t, result.Position%testFrameSize)
		assert.Equal(t, stream.Seeker.TimeAt(result.Position), result.Time)
	})
}

func TestOpenReader_AssumeConstantBitrate(t *testing.T) {
	data := buildXingStream(20, 1000)

	stream, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "vbr.mp3",
		audioseek.WithAssumeConstantBitrate())
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "constant-bitrate", stream.Seeker.String())
}

func TestOpenReader_DamagedXingDegrades(t *testing.T) {
	// A Xing header with a table but no frame count: the table cannot
	// be trusted and the stream degrades to constant-bitrate.
	data := buildXingStream(20, 1000)
	binary.BigEndian.PutUint32(data[40:], 0x6) // bytes | toc, frames missing

	stream, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "damaged.mp3")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "constant-bitrate", stream.Seeker.String())
	assert.NotEmpty(t, stream.Warnings)

	t.Run("strict probe fails instead", func(t *testing.T) {
		_, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "damaged.mp3",
			audioseek.WithStrictProbe())
		assert.Error(t, err)
	})
}

func TestOpenReader_UnknownLength(t *testing.T) {
	data := buildCBRStream(20)

	// Negative size: a live stream of unknown length.
	stream, err := audioseek.OpenReader(bytes.NewReader(data), -1, "live")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "constant-bitrate", stream.Seeker.String())

	_, ok := stream.Seeker.Duration()
	assert.False(t, ok, "duration must stay unknown for unsized streams")

	_, ok = stream.Seeker.DataEnd()
	assert.False(t, ok, "data end must stay unknown, never zero")

	// Seeking by extrapolation still works.
	result, err := stream.SeekTo(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, result.Position%testFrameSize)
}

func TestOpenReader_UnrecognizedStream(t *testing.T) {
	data := make([]byte, 4096)

	_, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "noise.bin")
	require.Error(t, err)

	var unsupported *audioseek.UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)
}

func TestStream_SeekFailureKeepsPosition(t *testing.T) {
	// Valid head, then garbage: seeking into the garbage region finds
	// no frame within the window.
	data := buildCBRStream(3)
	data = append(data, make([]byte, 8192)...)

	stream, err := audioseek.OpenReader(bytes.NewReader(data), int64(len(data)), "truncated.mp3",
		audioseek.WithScanWindow(512))
	require.NoError(t, err)
	defer stream.Close()

	good, err := stream.SeekTo(context.Background(), 0)
	require.NoError(t, err)

	_, err = stream.SeekTo(context.Background(), 10*time.Hour)
	require.Error(t, err)
	assert.ErrorIs(t, err, audioseek.ErrFrameNotFound)

	assert.Equal(t, good, stream.Position(), "failed seek must not move the stream")
}

func writeTempStream(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpen_File(t *testing.T) {
	path := writeTempStream(t, t.TempDir(), "song.mp3", buildCBRStream(10))

	stream, err := audioseek.Open(path)
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, path, stream.Path)
	assert.True(t, stream.Seeker.Seekable())
}

func TestOpenMany(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTempStream(t, dir, "a.mp3", buildCBRStream(5)),
		writeTempStream(t, dir, "b.mp3", buildXingStream(5, 100)),
		writeTempStream(t, dir, "c.mp3", buildCBRStream(8)),
	}

	streams, err := audioseek.OpenMany(context.Background(), paths...)
	require.NoError(t, err)
	defer func() {
		for _, s := range streams {
			s.Close()
		}
	}()

	require.Len(t, streams, 3)
	assert.Equal(t, paths[0], streams[0].Path)
	assert.Equal(t, "indexed", streams[1].Seeker.String())
	assert.Equal(t, paths[2], streams[2].Path)
}

// TestOpenMany_Cancellation verifies that cancelled operations clean up
// resources.
func TestOpenMany_Cancellation(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 5)
	for i := range paths {
		paths[i] = writeTempStream(t, dir, string(rune('a'+i))+".mp3", buildCBRStream(5))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	streams, err := audioseek.OpenMany(ctx, paths...)
	require.Error(t, err)
	assert.Nil(t, streams, "expected nil streams on error")
}

func TestOpenMany_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTempStream(t, dir, "good.mp3", buildCBRStream(5)),
		writeTempStream(t, dir, "bad.bin", make([]byte, 256)),
	}

	streams, err := audioseek.OpenMany(context.Background(), paths...)
	require.Error(t, err)
	assert.Nil(t, streams)
}
