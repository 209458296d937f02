package mp3

import (
	"fmt"
	"time"

	"github.com/simonhull/audioseek/internal/source"
)

// maxSyncScan bounds how far past any ID3 tag the probe searches for
// the first frame sync before declaring the stream unrecognizable.
const maxSyncScan = 128 * 1024

// Info summarizes what probing found at the head of an MPEG audio
// stream. It carries everything needed to choose a seek strategy.
type Info struct {
	// Header is the first recognized frame header.
	Header Header

	// DataStart is the byte offset of the first audio frame, past any
	// leading ID3v2 tag.
	DataStart int64

	// DataEnd is the offset one past the last audio byte. Known when
	// the stream length is known or a VBR header declares a byte count.
	DataEnd      int64
	DataEndKnown bool

	// Duration is the total playback time, when determinable.
	Duration      time.Duration
	DurationKnown bool

	// BytesPerSecond is the average data rate, or 0 when unknown.
	BytesPerSecond int64

	// TOC holds tocEntries byte-position fractions in [0,1]; entry i is
	// the fraction of audio data consumed at time fraction i/len(TOC).
	// Nil when the stream carries no usable seek table.
	TOC []float64

	// VBR reports whether the stream declares variable bitrate.
	VBR bool
}

// Probe locates the first audio frame and reads any Xing/Info or VBRI
// header behind it. Non-fatal oddities (a seek table without a frame
// count, say) come back as warning strings; only a stream with no
// recognizable frame fails.
func Probe(src *source.Reader) (Info, []string, error) {
	var warnings []string

	dataStart, hdr, err := findFirstFrame(src, id3TagSize(src))
	if err != nil {
		return Info{}, nil, err
	}

	info := Info{
		Header:    hdr,
		DataStart: dataStart,
	}
	if length, ok := src.Length(); ok {
		info.DataEnd = length
		info.DataEndKnown = true
	}

	vbr, hasVBR := readVBRHeaders(src, dataStart, hdr)
	if hasVBR {
		warnings = applyVBRInfo(&info, vbr)
	}

	if !info.DurationKnown && info.DataEndKnown {
		// No frame count to go by: estimate from the first frame's
		// bitrate, assuming it holds for the whole stream. Scaling by
		// bytes per second keeps the product inside int64 for
		// multi-gigabyte streams.
		size := info.DataEnd - info.DataStart
		info.Duration = time.Duration(size * int64(time.Second) / int64(hdr.Bitrate/8))
		info.DurationKnown = true
	}

	info.BytesPerSecond = averageRate(info)

	return info, warnings, nil
}

// applyVBRInfo folds a Xing/Info/VBRI header into info, returning
// warnings for the parts that had to be discarded.
func applyVBRInfo(info *Info, vbr vbrInfo) []string {
	var warnings []string

	if vbr.frameCount > 0 {
		info.Duration = time.Duration(vbr.frameCount) * info.Header.Duration
		info.DurationKnown = true
	} else {
		warnings = append(warnings, "VBR header without frame count; duration falls back to a bitrate estimate")
	}

	if vbr.byteCount > 0 {
		end := info.DataStart + int64(vbr.byteCount)
		if !info.DataEndKnown || end <= info.DataEnd {
			info.DataEnd = end
			info.DataEndKnown = true
		} else {
			warnings = append(warnings, fmt.Sprintf("VBR header byte count %d exceeds stream size; ignored", vbr.byteCount))
		}
	}

	if vbr.infoTag {
		// "Info" means the encoder wrote a constant-bitrate stream; its
		// table adds nothing over linear extrapolation.
		return warnings
	}

	info.VBR = true

	switch {
	case vbr.toc == nil:
		// Nothing to index with; a VBR stream without a table seeks by
		// average rate, which is all the format offers here.
	case !info.DurationKnown:
		warnings = append(warnings, "seek table present but duration unknown; table discarded")
	case !info.DataEndKnown:
		warnings = append(warnings, "seek table present but data size unknown; table discarded")
	default:
		info.TOC = make([]float64, len(vbr.toc))
		for i, b := range vbr.toc {
			info.TOC[i] = float64(b) / 256
		}
	}

	return warnings
}

// averageRate derives bytes per second for linear extrapolation. Exact
// duration plus exact size beats the first frame's nominal bitrate.
func averageRate(info Info) int64 {
	if info.DurationKnown && info.DataEndKnown && info.Duration > 0 {
		size := info.DataEnd - info.DataStart
		return size * int64(time.Second) / int64(info.Duration)
	}
	return int64(info.Header.Bitrate / 8)
}

// findFirstFrame scans forward from offset for a valid frame sync.
func findFirstFrame(src *source.Reader, offset int64) (int64, Header, error) {
	buf := make([]byte, 4096+HeaderSize-1)
	limit := offset + maxSyncScan

	pos := offset
	for pos < limit {
		n, readErr := src.ReadAtMost(buf, pos)
		if n < HeaderSize {
			break
		}

		candidates := n - HeaderSize + 1
		for i := 0; i < candidates && pos+int64(i) < limit; i++ {
			if hdr, ok := ParseHeader(buf[i:n]); ok {
				return pos + int64(i), hdr, nil
			}
		}

		pos += int64(candidates)
		if readErr != nil {
			break
		}
	}

	return 0, Header{}, fmt.Errorf("no valid MPEG audio frame within %d bytes of offset %d", maxSyncScan, offset)
}

// id3TagSize returns the total size of a leading ID3v2 tag, or 0 when
// the stream does not start with one.
func id3TagSize(src *source.Reader) int64 {
	buf := make([]byte, 10)
	if err := src.ReadAt(buf, 0, "ID3v2 header"); err != nil {
		return 0
	}
	if string(buf[0:3]) != "ID3" {
		return 0
	}

	size := int64(decodeSynchsafe(buf[6:10])) + 10
	if buf[5]&0x10 != 0 {
		// Footer present.
		size += 10
	}
	return size
}

// decodeSynchsafe decodes a 28-bit synchsafe integer (7 bits per byte).
func decodeSynchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 | uint32(b[1]&0x7F)<<14 | uint32(b[2]&0x7F)<<7 | uint32(b[3]&0x7F)
}
