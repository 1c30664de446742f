// Package remux turns demuxed H.264/AAC elementary-stream samples into
// fragmented MP4 init and media segments for MSE append.
package remux

// SampleFlags is the ISO BMFF sample-dependency flag pair carried in trun.
type SampleFlags struct {
	// DependsOn is 1 when the sample depends on other samples, 2 when it
	// does not (a sync sample / keyframe).
	DependsOn uint8
	// IsNonSync is true unless the sample is independently decodable.
	IsNonSync bool
}

// Sample is one demuxed elementary-stream access unit as handed to the
// remuxer by the TS/ADTS demuxer. PTS/DTS are on the track's InputTimeScale,
// modulo 2^33.
type Sample struct {
	PTS int64
	DTS int64
	Key bool // video only: IDR / keyframe

	Units [][]byte // video: raw NAL units, one slice per unit (no start codes, no length prefix)
	Unit  []byte   // audio: one frame's raw bytes
}

// VideoTrack is the demuxed AVC track plus remuxer bookkeeping fields the
// orchestrator mutates in place between calls.
type VideoTrack struct {
	PID            int32
	Samples        []Sample
	InputTimeScale uint32
	Timescale      uint32
	Width          int
	Height         int
	SPS            []byte
	PPS            []byte
	Dropped        uint32
	SequenceNumber uint32
}

// AudioTrack is the demuxed AAC/MPEG audio track plus remuxer bookkeeping.
type AudioTrack struct {
	PID            int32
	Samples        []Sample
	InputTimeScale uint32
	Timescale      uint32
	SampleRate     uint32
	ChannelCount   uint8
	Codec          string
	ManifestCodec  string
	IsAAC          bool
	Config         []byte // raw AudioSpecificConfig, for esds
	Dropped        uint32
	SequenceNumber uint32
}

// MetadataCue is one timed ID3 cue.
type MetadataCue struct {
	PTS  int64
	DTS  int64
	Data []byte
}

// MetadataTrack carries timed ID3 cues rebased into the presentation clock.
type MetadataTrack struct {
	PID            int32
	Samples        []MetadataCue
	InputTimeScale uint32
}

// UserDataCue is one CEA-608/708 caption cue.
type UserDataCue struct {
	PTS  int64
	Data []byte
}

// UserDataTrack carries caption cues rebased into the presentation clock.
type UserDataTrack struct {
	PID            int32
	Samples        []UserDataCue
	InputTimeScale uint32
}

// Config holds the tunables consumed by the video/audio remuxers, normally
// populated from the hosting application's YAML configuration.
type Config struct {
	ForceKeyFrameOnDiscontinuity bool    `yaml:"forceKeyFrameOnDiscontinuity"`
	StretchShortVideoTrack       bool    `yaml:"stretchShortVideoTrack"`
	MaxBufferHole                float64 `yaml:"maxBufferHole"`
	MaxAudioFramesDrift          uint32  `yaml:"maxAudioFramesDrift"`
}

// TypeSupported reports which MIME/codec combinations the playback sink
// accepts natively, consulted when deciding the audio init segment's container.
type TypeSupported struct {
	MPEG bool // native audio/mpeg support
	MP3  bool // mp3-in-mp4 support
}

// EventKind identifies a non-fatal event reported through Observer.
type EventKind string

// EventKind values the remuxer can emit.
const (
	EventAllocError      EventKind = "REMUX_ALLOC_ERROR"
	EventMissingKeyframe EventKind = "REMUX_MISSING_KEYFRAME"
)

// Event is a single non-fatal notification surfaced to the host.
type Event struct {
	Kind   EventKind
	Track  string
	Bytes  int
	Reason string
}

// Observer is the fire-and-forget event sink injected at construction,
// kept separate from logging so the core has no global event bus.
type Observer interface {
	Notify(Event)
}

// SilentFrameFunc returns a codec-specific precomputed silent audio frame,
// or nil if the codec has no known silent frame.
type SilentFrameFunc func(codec string, channelCount uint8) []byte

// InitSegmentTrack describes one track recorded into the init segment.
type InitSegmentTrack struct {
	ID           string
	Container    string
	Codec        string
	ChannelCount uint8
	InitSegment  []byte
}

// InitSegmentResult is the return value of the init-segment generator.
type InitSegmentResult struct {
	Tracks    map[string]InitSegmentTrack
	InitPTS   int64
	Timescale uint32
}

// TrackResult is the return value of the video/audio remuxers.
type TrackResult struct {
	Moof     []byte
	Mdat     []byte
	StartPTS float64
	EndPTS   float64
	StartDTS float64
	EndDTS   float64
	Type     string // "video" or "audio"
	HasAudio bool
	HasVideo bool
	NB       int
	Dropped  uint32

	// Video-only.
	FirstKeyFrame int
	Independent   bool
}

// RemuxResult is the aggregate return value of Remux.
type RemuxResult struct {
	Audio       *TrackResult
	Video       *TrackResult
	InitSegment *InitSegmentResult
	Independent bool
	Text        *UserDataTrack
	ID3         *MetadataTrack
}
