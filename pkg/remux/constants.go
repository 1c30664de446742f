package remux

// AACSamplesPerFrame is the fixed number of PCM samples encoded by one AAC
// access unit.
const AACSamplesPerFrame = 1024

// MPEGAudioSamplesPerFrame is the fixed number of PCM samples encoded by one
// MPEG (layer 1/2/3) audio frame. The layer/variant is not distinguished.
const MPEGAudioSamplesPerFrame = 1152

// MaxSilentFrameDurationMS bounds how large an audio gap may be before the
// remuxer gives up on filling it with silence.
const MaxSilentFrameDurationMS = 10000

// PTSDTSShiftTolerance90kHz is 0.2s expressed in 90kHz ticks. The video
// remuxer clamps the most negative PTS-DTS shift it tracks to -0.2s; any
// negative shift, however small, is repaired.
const PTSDTSShiftTolerance90kHz = 18000

// ptsWrapSize is 2^33, the modulus of the transport-stream clock.
const ptsWrapSize = int64(1) << 33

// ptsMaxDistance is 2^32, the threshold beyond which normalize() assumes
// wrap-around rather than real motion.
const ptsMaxDistance = int64(1) << 32

// MaxMdatSize bounds a single mdat box so a corrupt or malicious fragment
// (e.g. a runaway sample count) can't force a multi-gigabyte allocation.
// Above this the fragment is dropped as a REMUX_ALLOC_ERROR instead of
// attempting the allocation.
const MaxMdatSize = 64 << 20
