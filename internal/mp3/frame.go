// Package mp3 recognizes MPEG audio frame boundaries and probes stream
// headers for the metadata that drives seek-strategy selection.
package mp3

import (
	"encoding/binary"
	"time"
)

// HeaderSize is the number of bytes needed to recognize a frame header.
const HeaderSize = 4

// samplesPerFrame is fixed for MPEG1 Layer III.
const samplesPerFrame = 1152

// MP3 bitrate table (MPEG1 Layer III) in kbps.
var bitrateTable = []int{
	0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0,
}

// MP3 sample rate table (MPEG1) in Hz.
var sampleRateTable = []int{
	44100, 48000, 32000, 0,
}

// Header describes a single MPEG audio frame.
type Header struct {
	Bitrate    int // bits per second
	SampleRate int // Hz
	Channels   int
	Padded     bool
	Size       int // full frame length in bytes, header included
	Duration   time.Duration
}

// ParseHeader validates the four header bytes at the start of data and
// derives the frame's size and duration. It reports false for anything
// that is not a supported MPEG1 Layer III frame, without consuming
// input, so callers can rescan at the next byte.
func ParseHeader(data []byte) (Header, bool) {
	if len(data) < HeaderSize {
		return Header{}, false
	}

	raw := binary.BigEndian.Uint32(data)

	// Frame sync: 11 bits set.
	if raw&0xFFE00000 != 0xFFE00000 {
		return Header{}, false
	}

	// MPEG1 (11) only; MPEG2/2.5 frames use different tables.
	if version := (raw >> 19) & 0x3; version != 3 {
		return Header{}, false
	}

	// Layer III (01).
	if layer := (raw >> 17) & 0x3; layer != 1 {
		return Header{}, false
	}

	bitrateIdx := (raw >> 12) & 0xF
	bitrate := bitrateTable[bitrateIdx] * 1000
	if bitrate == 0 {
		// Free-format (0) and reserved (15) bitrates are not supported.
		return Header{}, false
	}

	sampleRateIdx := (raw >> 10) & 0x3
	sampleRate := sampleRateTable[sampleRateIdx]
	if sampleRate == 0 {
		return Header{}, false
	}

	padded := (raw>>9)&0x1 == 1

	channels := 2
	if channelMode := (raw >> 6) & 0x3; channelMode == 3 {
		channels = 1 // Mono
	}

	size := 144 * bitrate / sampleRate
	if padded {
		size++
	}

	return Header{
		Bitrate:    bitrate,
		SampleRate: sampleRate,
		Channels:   channels,
		Padded:     padded,
		Size:       size,
		Duration:   time.Duration(samplesPerFrame) * time.Second / time.Duration(sampleRate),
	}, true
}
