// Package h264 provides helpers for repackaging H.264 access units between
// NAL-unit-stream representations.
package h264

import (
	"encoding/binary"
)

// MaxNALUSize is a 20 MiB bound on the size of a single NALU. AVCCMarshal
// does not check NALU sizes against it; it packs NAL units of any length.
const MaxNALUSize = 20 * 1024 * 1024

func avccMarshalSize(nalus [][]byte) int {
	n := 0
	for _, nalu := range nalus {
		n += 4 + len(nalu)
	}
	return n
}

// AVCCMarshal encodes NALUs into the AVCC stream format: each NAL unit is
// preceded by its 4-byte big-endian length. This is the layout fMP4 expects
// inside mdat, as opposed to Annex-B start codes.
func AVCCMarshal(nalus [][]byte) []byte {
	buf := make([]byte, avccMarshalSize(nalus))
	pos := 0
	for _, nalu := range nalus {
		binary.BigEndian.PutUint32(buf[pos:], uint32(len(nalu)))
		pos += 4

		pos += copy(buf[pos:], nalu)
	}
	return buf
}
