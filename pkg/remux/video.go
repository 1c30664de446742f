package remux

import (
	"sort"

	"github.com/devoldemar/hls.js/internal/metrics"
	"github.com/devoldemar/hls.js/pkg/h264"
	"github.com/devoldemar/hls.js/pkg/mp4"
)

const videoTrackID = 1

// videoStartPts returns the lowest presentation timestamp among the given
// samples, normalized for rollover against the first sample. Video samples
// may arrive PTS-reordered around B-frames, so the first sample's DTS is
// not a safe proxy for "where this fragment starts" — the minimum PTS is.
func videoStartPts(samples []Sample) int64 {
	minPTS := samples[0].PTS
	for _, s := range samples {
		delta := s.PTS - minPTS
		switch {
		case delta < -ptsMaxDistance:
			p := s.PTS
			minPTS = normalize(minPTS, &p)
		case delta > 0:
			// keep current minimum
		default:
			minPTS = s.PTS
		}
	}
	return minPTS
}

func firstKeyframeIndex(samples []Sample) int {
	for i, s := range samples {
		if s.Key {
			return i
		}
	}
	return -1
}

func round(f float64) int64 {
	if f >= 0 {
		return int64(f + 0.5)
	}
	return int64(f - 0.5)
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// remuxVideo packs one fragment of video samples into a media segment.
// track.Samples is drained (set to nil) on any
// path that consumes it. audioTrackLength is the duration in seconds of the
// audio segment remuxed in the same call, 0 if unknown/absent.
func (r *Remuxer) remuxVideo(track *VideoTrack, timeOffset float64, contiguous bool, audioTrackLength float64) *TrackResult {
	samples := track.Samples
	n := len(samples)
	if n < 2 {
		return nil
	}

	timeScale := int64(track.InputTimeScale)

	// Step A — anchor next DTS.
	var nextAvcDts int64
	if contiguous && r.nextAvcDts != nil {
		nextAvcDts = *r.nextAvcDts
	} else {
		firstPTS := samples[0].PTS
		cts := firstPTS - normalize(samples[0].DTS, &firstPTS)
		nextAvcDts = round(timeOffset*float64(timeScale)) - cts
	}

	// Step B — normalize + detect disorder.
	anchor := nextAvcDts
	ptsDtsShift := int64(0)
	sortSamples := false
	prevDTS := int64(0)
	for i := range samples {
		samples[i].PTS = normalize(samples[i].PTS-deref(r.initPTS), &anchor)
		samples[i].DTS = normalize(samples[i].DTS-deref(r.initPTS), &anchor)

		shift := samples[i].PTS - samples[i].DTS
		if shift < ptsDtsShift || i == 0 {
			ptsDtsShift = shift
		}
		if ptsDtsShift < -PTSDTSShiftTolerance90kHz {
			ptsDtsShift = -PTSDTSShiftTolerance90kHz
		}
		if i > 0 && samples[i].DTS < prevDTS {
			sortSamples = true
		}
		prevDTS = samples[i].DTS
	}
	if sortSamples {
		sort.SliceStable(samples, func(i, j int) bool {
			if samples[i].DTS != samples[j].DTS {
				return samples[i].DTS < samples[j].DTS
			}
			return samples[i].PTS < samples[j].PTS
		})
		metrics.SamplesRepaired.WithLabelValues("video", "disorder_sort").Add(float64(n))
	}

	firstDTS := samples[0].DTS
	lastDTS := samples[n-1].DTS
	minPTS := samples[0].PTS
	maxPTS := samples[0].PTS
	for _, s := range samples {
		if s.PTS < minPTS {
			minPTS = s.PTS
		}
		if s.PTS > maxPTS {
			maxPTS = s.PTS
		}
	}

	// Step C — average duration.
	avgDuration := int64(0)
	if n > 1 {
		avgDuration = round(float64(lastDTS-firstDTS) / float64(n-1))
	}

	// Step D — PTS<DTS repair.
	if ptsDtsShift < 0 {
		if ptsDtsShift < -2*avgDuration {
			prev := samples[0].DTS
			for i := range samples {
				d := maxI64(prev, samples[i].PTS-avgDuration)
				samples[i].DTS = d
				if samples[i].PTS < d {
					samples[i].PTS = d
				}
				prev = d
			}
		} else {
			for i := range samples {
				samples[i].DTS += ptsDtsShift
			}
		}
		metrics.SamplesRepaired.WithLabelValues("video", "pts_dts_repair").Add(float64(n))
		firstDTS = samples[0].DTS
		lastDTS = samples[n-1].DTS
	}

	// Step E — inter-fragment hole/overlap.
	if contiguous {
		delta := firstDTS - nextAvcDts
		if delta > avgDuration || delta < -1 {
			firstDTS = nextAvcDts
			samples[0].PTS -= delta
			samples[0].DTS = firstDTS
			kind := "hole_absorbed"
			if delta < -1 {
				kind = "overlap_absorbed"
			}
			metrics.SamplesRepaired.WithLabelValues("video", kind).Inc()
		}
	}

	// Step F — positive DTS clamp.
	if r.quirks.requiresPositiveDts {
		firstDTS = maxI64(0, firstDTS)
		samples[0].DTS = firstDTS
	}

	// Step G — allocate mdat via the NALU packer + box writer.
	layouts := make([]mp4.VideoSampleLayout, n)
	mdatSize := 8
	for i, s := range samples {
		payload := h264.AVCCMarshal(s.Units)
		mdatSize += len(payload)
		var flags SampleFlags
		if s.Key {
			flags = SampleFlags{DependsOn: 2, IsNonSync: false}
		} else {
			flags = SampleFlags{DependsOn: 1, IsNonSync: true}
		}
		layouts[i] = mp4.VideoSampleLayout{
			NonSync:   flags.IsNonSync,
			DependsOn: flags.DependsOn,
			Payload:   payload,
		}
	}
	if mdatSize > MaxMdatSize {
		r.observer.Notify(Event{Kind: EventAllocError, Track: "video", Bytes: mdatSize, Reason: "mdat size exceeds allocation limit"})
		metrics.AllocErrors.WithLabelValues("video").Inc()
		track.Samples = nil
		track.Dropped = 0
		return nil
	}

	// Step H — per-sample duration.
	for i := 0; i < n-1; i++ {
		layouts[i].Duration = uint32(samples[i+1].DTS - samples[i].DTS)
	}
	lastDuration := int64(0)
	if n > 1 {
		lastDuration = samples[n-1].DTS - samples[n-2].DTS
	}
	if r.config.StretchShortVideoTrack && r.nextAudioPts != nil {
		var deltaToFrameEnd int64
		if audioTrackLength > 0 {
			deltaToFrameEnd = minPTS + round(audioTrackLength*float64(timeScale)) - samples[n-1].PTS
		} else {
			deltaToFrameEnd = *r.nextAudioPts - samples[n-1].PTS
		}
		gapTolerance := int64(r.config.MaxBufferHole * float64(timeScale))
		if deltaToFrameEnd > gapTolerance {
			lastDuration = maxI64(deltaToFrameEnd-lastDuration, lastDuration)
		}
	}
	if lastDuration <= 0 {
		lastDuration = 1
	}
	layouts[n-1].Duration = uint32(lastDuration)

	for i := range samples {
		layouts[i].CTS = int32(round(float64(samples[i].PTS - samples[i].DTS)))
	}

	// Step I — keyframe workaround.
	if layouts[0].NonSync && r.quirks.legacyKeyframeWorkaround {
		layouts[0].NonSync = false
		layouts[0].DependsOn = 2
	}

	moof, mdat := mp4.BuildMediaSegment(track.SequenceNumber, videoTrackID, uint64(firstDTS), layouts, 0, 0, nil)

	// Step J — finalize state.
	droppedCount := track.Dropped
	nextDTS := lastDTS + lastDuration
	r.nextAvcDts = ref2(nextDTS)
	r.isVideoContiguous = true
	track.Samples = nil
	track.Dropped = 0
	track.SequenceNumber++

	metrics.SegmentsEmitted.WithLabelValues("video").Inc()

	ts := float64(timeScale)
	return &TrackResult{
		Moof:     moof,
		Mdat:     mdat,
		StartPTS: float64(minPTS) / ts,
		EndPTS:   float64(maxPTS+lastDuration) / ts,
		StartDTS: float64(firstDTS) / ts,
		EndDTS:   float64(nextDTS) / ts,
		Type:     "video",
		HasVideo: true,
		NB:       n,
		Dropped:  droppedCount,
	}
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func ref2(v int64) *int64 {
	return &v
}
