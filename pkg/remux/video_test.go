package remux

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nalu(size int) []byte {
	b := make([]byte, size)
	b[0] = 0x65 // IDR slice NAL header, not semantically checked here
	return b
}

func sumSampleSizes(layouts [][]byte) int {
	total := 0
	for _, p := range layouts {
		total += len(p)
	}
	return total
}

func mdatSampleCount(mdat []byte, sampleCount int) int {
	// mdat is a plain box: 4-byte size, 4-byte "mdat" fourcc, then payload.
	// Returns the payload length in bytes; sampleCount is not used.
	return len(mdat) - 8
}

func newTestRemuxer() *Remuxer {
	return New(NoopObserver{}, Config{}, TypeSupported{}, "Mozilla/5.0", nil)
}

func TestRemuxVideoPureContiguousPair(t *testing.T) {
	r := newTestRemuxer()
	track := &VideoTrack{
		PID:            0,
		InputTimeScale: 90000,
		Timescale:      90000,
		Samples: []Sample{
			{DTS: 0, PTS: 3003, Key: true, Units: [][]byte{nalu(1000)}},
			{DTS: 3003, PTS: 6006, Units: [][]byte{nalu(1000)}},
			{DTS: 6006, PTS: 9009, Units: [][]byte{nalu(1000)}},
		},
	}

	result := r.remuxVideo(track, 0, false, 0)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.NB)
	assert.InDelta(t, 0, result.StartDTS, 1e-9)

	// Each NAL unit is 4-byte length-prefixed inside mdat: 1000+4 = 1004.
	assert.Equal(t, 3*1004, mdatSampleCount(result.Mdat, 3))

	fragB := &VideoTrack{
		PID:            0,
		InputTimeScale: 90000,
		Timescale:      90000,
		Samples: []Sample{
			{DTS: 9009, PTS: 12012, Key: true, Units: [][]byte{nalu(1000)}},
			{DTS: 12012, PTS: 15015, Units: [][]byte{nalu(1000)}},
			{DTS: 15015, PTS: 18018, Units: [][]byte{nalu(1000)}},
		},
		SequenceNumber: track.SequenceNumber,
	}
	resultB := r.remuxVideo(fragB, 0, true, 0)
	require.NotNil(t, resultB)
	assert.InDelta(t, result.EndDTS, resultB.StartDTS, 1e-6)
}

func TestRemuxVideoRollover(t *testing.T) {
	r := newTestRemuxer()
	const wrap = int64(1) << 33
	track := &VideoTrack{
		InputTimeScale: 90000,
		Timescale:      90000,
		Samples: []Sample{
			{DTS: wrap - 1000, PTS: wrap - 1000, Key: true, Units: [][]byte{nalu(10)}},
			{DTS: wrap - 500, PTS: wrap - 500, Units: [][]byte{nalu(10)}},
			{DTS: 200, PTS: 200, Units: [][]byte{nalu(10)}},
		},
	}

	result := r.remuxVideo(track, 0, false, 0)
	require.NotNil(t, result)
	// After normalization DTS must be monotone increasing.
	assert.Greater(t, result.EndDTS, result.StartDTS)
}

func TestRemuxVideoMildPtsDtsShift(t *testing.T) {
	// ptsDtsShift is -3003 and the average duration 3003; -3003 is not below
	// -2*avg (-6006), so every DTS is shifted uniformly by -3003.
	r := newTestRemuxer()
	track := &VideoTrack{
		InputTimeScale: 90000,
		Timescale:      90000,
		Samples: []Sample{
			{DTS: 0, PTS: 0, Key: true, Units: [][]byte{nalu(10)}},
			{DTS: 3003, PTS: 0, Units: [][]byte{nalu(10)}},
			{DTS: 6006, PTS: 6006, Units: [][]byte{nalu(10)}},
		},
	}

	result := r.remuxVideo(track, 0, false, 0)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.NB)
	// PTS >= DTS must hold for every emitted sample; we can't read sample
	// PTS back out of the moof here, but startDTS/startPTS bookkeeping
	// must stay internally consistent.
	assert.GreaterOrEqual(t, result.EndPTS, result.StartPTS)
}

func TestRemuxVideoSingleSampleReturnsNothing(t *testing.T) {
	r := newTestRemuxer()
	track := &VideoTrack{
		InputTimeScale: 90000,
		Samples:        []Sample{{DTS: 0, PTS: 0, Key: true, Units: [][]byte{nalu(10)}}},
	}
	assert.Nil(t, r.remuxVideo(track, 0, false, 0))
}

func TestRemuxVideoMdatLengthInvariant(t *testing.T) {
	r := newTestRemuxer()
	track := &VideoTrack{
		InputTimeScale: 90000,
		Samples: []Sample{
			{DTS: 0, PTS: 0, Key: true, Units: [][]byte{nalu(200)}},
			{DTS: 100, PTS: 100, Units: [][]byte{nalu(300)}},
		},
	}
	result := r.remuxVideo(track, 0, false, 0)
	require.NotNil(t, result)
	// mdat = 8-byte header + concatenated AVCC payloads (4-byte length prefix each).
	expected := 8 + (4 + 200) + (4 + 300)
	assert.Equal(t, expected, len(result.Mdat))
}

func TestFirstKeyframeIndex(t *testing.T) {
	samples := []Sample{{Key: false}, {Key: false}, {Key: true}, {Key: false}}
	assert.Equal(t, 2, firstKeyframeIndex(samples))
	assert.Equal(t, -1, firstKeyframeIndex([]Sample{{Key: false}}))
}

func TestMdatSizeField(t *testing.T) {
	r := newTestRemuxer()
	track := &VideoTrack{
		InputTimeScale: 90000,
		Samples: []Sample{
			{DTS: 0, PTS: 0, Key: true, Units: [][]byte{nalu(10)}},
			{DTS: 100, PTS: 100, Units: [][]byte{nalu(10)}},
		},
	}
	result := r.remuxVideo(track, 0, false, 0)
	require.NotNil(t, result)
	size := binary.BigEndian.Uint32(result.Mdat[0:4])
	assert.Equal(t, int(size), len(result.Mdat))
}
