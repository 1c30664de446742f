package remux

import "github.com/devoldemar/hls.js/internal/obslog"

// Remuxer is a single stateful transmuxing session. It is not safe for
// concurrent use: remux() calls on the same instance must be serialized by
// the caller, matching the single-threaded, non-reentrant model of the
// source pipeline.
type Remuxer struct {
	observer      Observer
	config        Config
	typeSupported TypeSupported
	quirks        quirks
	silentFrame   SilentFrameFunc

	initPTS *int64
	initDTS *int64

	isGenerated bool

	nextAvcDts   *int64
	nextAudioPts *int64

	isVideoContiguous bool
	isAudioContiguous bool
}

// New constructs a Remuxer. vendor is the hosting engine's user-agent or
// vendor string, consulted once to detect the positive-DTS and legacy
// keyframe quirks. silentFrame may be nil, in which case gap-filling falls
// back to duplicating the audio sample that follows the gap, and empty-audio
// synthesis produces no segment.
func New(observer Observer, config Config, typeSupported TypeSupported, vendor string, silentFrame SilentFrameFunc) *Remuxer {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Remuxer{
		observer:      observer,
		config:        config,
		typeSupported: typeSupported,
		quirks:        detectQuirks(vendor),
		silentFrame:   silentFrame,
	}
}

// ResetTimeStamp sets both session anchors to v, as used when the playback
// controller re-aligns to a program-date-time reference.
func (r *Remuxer) ResetTimeStamp(v int64) {
	r.initPTS = ref(v)
	r.initDTS = ref(v)
}

// ResetNextTimestamp clears both contiguity flags and the next-timestamp
// anchors, as used on seek or discontinuity.
func (r *Remuxer) ResetNextTimestamp() {
	r.isVideoContiguous = false
	r.isAudioContiguous = false
	r.nextAvcDts = nil
	r.nextAudioPts = nil
}

// ResetInitSegment forces re-emission of the init segment on the next
// Remux call, as used on codec change.
func (r *Remuxer) ResetInitSegment() {
	r.isGenerated = false
}

// Destroy releases the remuxer's references. It performs no I/O; it exists
// to mirror the source lifecycle and to give callers an explicit point to
// drop the instance.
func (r *Remuxer) Destroy() {
	r.observer = nil
	r.silentFrame = nil
}

// NoopObserver discards every event. It is the default when New is called
// with a nil observer.
type NoopObserver struct{}

// Notify implements Observer.
func (NoopObserver) Notify(Event) {}

// LogObserver forwards events to the package-wide structured logger.
type LogObserver struct{}

// Notify implements Observer.
func (LogObserver) Notify(e Event) {
	log := obslog.Logger()
	switch e.Kind {
	case EventAllocError:
		log.Warn().Str("track", e.Track).Int("bytes", e.Bytes).Str("reason", e.Reason).Msg("mdat allocation failed")
	case EventMissingKeyframe:
		log.Warn().Str("track", e.Track).Str("reason", e.Reason).Msg("no keyframe found at discontinuity")
	default:
		log.Warn().Str("track", e.Track).Str("kind", string(e.Kind)).Msg("remux event")
	}
}
