package aac

// MPEG4AudioType is the audio type of a MPEG-4 Audio stream, as defined by
// ISO/IEC 14496-3.
type MPEG4AudioType int

// MPEG4AudioType values relevant to ADTS/LOAS-style configuration decoding.
const (
	MPEG4AudioTypeAACLC MPEG4AudioType = 2
)

// SamplesPerAccessUnit is the number of PCM samples encoded by a single AAC
// access unit (AAC-LC, the only profile this package decodes).
const SamplesPerAccessUnit = 1024

var sampleRates = [...]int{
	96000,
	88200,
	64000,
	48000,
	44100,
	32000,
	24000,
	22050,
	16000,
	12000,
	11025,
	8000,
	7350,
}

var reverseSampleRates = func() map[int]int {
	m := make(map[int]int, len(sampleRates))
	for i, rate := range sampleRates {
		m[rate] = i
	}
	return m
}()
