package mp3

import (
	"encoding/binary"

	"github.com/simonhull/audioseek/internal/source"
)

// Xing header flag bits.
const (
	xingFrames = 1 << 0
	xingBytes  = 1 << 1
	xingTOC    = 1 << 2
)

// tocEntries is the fixed size of a Xing seek table.
const tocEntries = 100

// vbrInfo holds what a Xing, Info, or VBRI header declares about the
// stream.
type vbrInfo struct {
	frameCount uint32
	byteCount  uint32 // audio data size from the header's frame onward; 0 if absent
	toc        []byte // tocEntries byte-offset fractions out of 256; nil if absent
	infoTag    bool   // "Info" marker: encoder declares constant bitrate
}

// sideInfoSize returns the MPEG1 side-information length that separates
// the frame header from a Xing/Info marker.
func sideInfoSize(channels int) int64 {
	if channels == 1 {
		return 17
	}
	return 32
}

// readVBRHeaders looks for a Xing/Info or VBRI header inside the frame
// starting at frameOffset. It reports false when the frame is a plain
// audio frame.
func readVBRHeaders(src *source.Reader, frameOffset int64, hdr Header) (vbrInfo, bool) {
	if info, ok := readXing(src, frameOffset+HeaderSize+sideInfoSize(hdr.Channels)); ok {
		return info, true
	}
	// VBRI headers sit at a fixed 32-byte offset past the header,
	// regardless of channel mode.
	return readVBRI(src, frameOffset+HeaderSize+32)
}

func readXing(src *source.Reader, offset int64) (vbrInfo, bool) {
	head := make([]byte, 8)
	if err := src.ReadAt(head, offset, "Xing header"); err != nil {
		return vbrInfo{}, false
	}

	marker := string(head[0:4])
	if marker != "Xing" && marker != "Info" {
		return vbrInfo{}, false
	}

	info := vbrInfo{infoTag: marker == "Info"}
	flags := binary.BigEndian.Uint32(head[4:8])
	pos := offset + 8

	// Field reads past this point fail only on a truncated stream;
	// report what the header declared up to the cut.
	if flags&xingFrames != 0 {
		v, err := source.ReadBE[uint32](src, pos, "Xing frame count")
		if err != nil {
			return info, true
		}
		info.frameCount = v
		pos += 4
	}
	if flags&xingBytes != 0 {
		v, err := source.ReadBE[uint32](src, pos, "Xing byte count")
		if err != nil {
			return info, true
		}
		info.byteCount = v
		pos += 4
	}
	if flags&xingTOC != 0 {
		toc := make([]byte, tocEntries)
		if err := src.ReadAt(toc, pos, "Xing seek table"); err != nil {
			return info, true
		}
		info.toc = toc
	}

	return info, true
}

func readVBRI(src *source.Reader, offset int64) (vbrInfo, bool) {
	marker := make([]byte, 4)
	if err := src.ReadAt(marker, offset, "VBRI header"); err != nil {
		return vbrInfo{}, false
	}
	if string(marker) != "VBRI" {
		return vbrInfo{}, false
	}

	// Layout after the marker: version(2), delay(2), quality(2),
	// bytes(4), frames(4).
	byteCount, err := source.ReadBE[uint32](src, offset+10, "VBRI byte count")
	if err != nil {
		return vbrInfo{}, false
	}
	frameCount, err := source.ReadBE[uint32](src, offset+14, "VBRI frame count")
	if err != nil {
		return vbrInfo{}, false
	}

	return vbrInfo{byteCount: byteCount, frameCount: frameCount}, true
}
