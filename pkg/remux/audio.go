package remux

import (
	"github.com/devoldemar/hls.js/internal/metrics"
	"github.com/devoldemar/hls.js/pkg/mp4"
)

const audioTrackIDWithVideo = 2
const audioTrackIDAlone = 1

// remuxAudio packs one fragment of audio samples into a media segment.
// track.Samples is drained (set to nil) on any
// path that consumes it. videoTimeOffset is nil when no video track
// participates in this fragment.
func (r *Remuxer) remuxAudio(track *AudioTrack, timeOffset float64, contiguous, accurateTimeOffset bool, videoTimeOffset *float64, hasVideo bool) *TrackResult {
	samples := track.Samples
	if len(samples) == 0 {
		return nil
	}

	inputTimeScale := int64(track.InputTimeScale)

	mp4SampleDuration := int64(MPEGAudioSamplesPerFrame)
	mp4TimeScale := inputTimeScale
	if track.IsAAC {
		mp4SampleDuration = AACSamplesPerFrame
		mp4TimeScale = int64(track.SampleRate)
	}
	scaleFactor := float64(inputTimeScale) / float64(mp4TimeScale)
	inputSampleDuration := round(float64(mp4SampleDuration) * scaleFactor)

	timeOffsetTicks := round(timeOffset * float64(inputTimeScale))

	// Contiguity re-evaluation.
	if !contiguous && r.nextAudioPts != nil && *r.nextAudioPts > 0 {
		next := *r.nextAudioPts
		if accurateTimeOffset && abs64(timeOffsetTicks-next) < 9000 {
			contiguous = true
		} else {
			anchor := timeOffsetTicks
			firstNorm := normalize(samples[0].PTS-deref(r.initPTS), &anchor)
			if abs64(firstNorm-next) < 20*inputSampleDuration {
				contiguous = true
			}
		}
	}

	// Normalize every sample's PTS against the fragment time offset.
	for i := range samples {
		anchor := timeOffsetTicks
		samples[i].PTS = normalize(samples[i].PTS-deref(r.initPTS), &anchor)
	}

	// Re-anchor when not contiguous.
	nextAudioPts := int64(-1)
	if r.nextAudioPts != nil {
		nextAudioPts = *r.nextAudioPts
	}
	if !contiguous || nextAudioPts < 0 {
		kept := samples[:0]
		dropped := 0
		for _, s := range samples {
			if s.PTS >= 0 {
				kept = append(kept, s)
			} else {
				dropped++
			}
		}
		samples = kept
		if dropped > 0 {
			metrics.DroppedSamples.WithLabelValues("audio", "negative_pts").Add(float64(dropped))
		}
		if len(samples) == 0 {
			track.Samples = nil
			return nil
		}

		switch {
		case videoTimeOffset != nil && *videoTimeOffset == 0:
			nextAudioPts = 0
		case accurateTimeOffset:
			nextAudioPts = maxI64(0, timeOffsetTicks)
		default:
			nextAudioPts = samples[0].PTS
		}
	}

	// Gap/overlap repair, AAC only, only when this fragment is being
	// aligned against a video track.
	if track.IsAAC && hasVideo {
		maxDrift := int64(r.config.MaxAudioFramesDrift) * inputSampleDuration
		nextPts := nextAudioPts
		out := make([]Sample, 0, len(samples))
		for i, s := range samples {
			delta := s.PTS - nextPts
			switch {
			case delta <= -maxDrift && i == 0:
				nextAudioPts = s.PTS
				nextPts = s.PTS
			case delta >= maxDrift && abs64(delta)*1000/inputTimeScale < MaxSilentFrameDurationMS:
				missing := round(float64(delta) / float64(inputSampleDuration))
				newNextPts := s.PTS - missing*inputSampleDuration
				if newNextPts < 0 {
					missing--
					newNextPts += inputSampleDuration
				}
				if i == 0 {
					nextAudioPts = newNextPts
				}
				nextPts = newNextPts

				frame := r.silentFrameFor(track, s.Unit)
				for k := int64(0); k < missing; k++ {
					out = append(out, Sample{PTS: nextPts + k*inputSampleDuration, Unit: frame})
				}
				if missing > 0 {
					nextPts += missing * inputSampleDuration
					metrics.SamplesRepaired.WithLabelValues("audio", "silence_inserted").Add(float64(missing))
				}
			}
			s.PTS = nextPts
			out = append(out, s)
			nextPts += inputSampleDuration
		}
		samples = out
	}

	n := len(samples)

	// First sample exact join.
	if contiguous && track.IsAAC {
		samples[0].PTS = nextAudioPts
	}

	// Allocate and fill mdat, build per-sample durations.
	layouts := make([]mp4.AudioSampleLayout, n)
	mdatSize := 8
	for i, s := range samples {
		layouts[i] = mp4.AudioSampleLayout{Payload: s.Unit}
		mdatSize += len(s.Unit)
	}
	if mdatSize > MaxMdatSize {
		r.observer.Notify(Event{Kind: EventAllocError, Track: "audio", Bytes: mdatSize, Reason: "mdat size exceeds allocation limit"})
		metrics.AllocErrors.WithLabelValues("audio").Inc()
		track.Samples = nil
		return nil
	}

	lastPTS := samples[0].PTS
	for i := 1; i < n; i++ {
		d := round(float64(samples[i].PTS-lastPTS) / scaleFactor)
		if d <= 0 {
			d = mp4SampleDuration
		}
		layouts[i-1].Duration = uint32(d)
		lastPTS = samples[i].PTS
	}
	layouts[n-1].Duration = uint32(mp4SampleDuration)

	var moof, mdat []byte
	trackID := uint32(audioTrackIDAlone)
	if hasVideo {
		trackID = audioTrackIDWithVideo
	}
	if track.IsAAC {
		moof, mdat = mp4.BuildMediaSegment(track.SequenceNumber, 0, 0, nil, trackID, uint64(samples[0].PTS), layouts)
	} else {
		// Raw MPEG audio carries no ISO BMFF wrapper: no moof, no mdat
		// box header, just the concatenated frames.
		total := 0
		for _, s := range samples {
			total += len(s.Unit)
		}
		mdat = make([]byte, 0, total)
		for _, s := range samples {
			mdat = append(mdat, s.Unit...)
		}
	}

	// Finalize state.
	finalNextAudioPts := lastPTS + round(float64(layouts[n-1].Duration)*scaleFactor)
	r.nextAudioPts = ref2(finalNextAudioPts)
	r.isAudioContiguous = true
	track.Samples = nil
	track.SequenceNumber++

	metrics.SegmentsEmitted.WithLabelValues("audio").Inc()

	ts := float64(inputTimeScale)
	return &TrackResult{
		Moof:     moof,
		Mdat:     mdat,
		StartPTS: float64(samples[0].PTS) / ts,
		EndPTS:   float64(finalNextAudioPts) / ts,
		StartDTS: float64(samples[0].PTS) / ts,
		EndDTS:   float64(finalNextAudioPts) / ts,
		Type:     "audio",
		HasAudio: true,
		NB:       n,
	}
}

// silentFrameFor returns a gap-filling frame for track, falling back to
// duplicating fallback (the sample whose gap triggered the insertion) when
// the codec has no registered silent frame.
func (r *Remuxer) silentFrameFor(track *AudioTrack, fallback []byte) []byte {
	if r.silentFrame != nil {
		if f := r.silentFrame(track.Codec, track.ChannelCount); f != nil {
			return f
		}
	}
	return fallback
}
