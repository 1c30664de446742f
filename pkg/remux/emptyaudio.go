package remux

// getNbrFrames returns how many additional silent AAC frames are needed
// to span [startTicks, endTicks) at scaleFactor*AACSamplesPerFrame spacing.
func getNbrFrames(startTicks, endTicks, frameSpacing int64) int64 {
	if frameSpacing <= 0 || endTicks <= startTicks {
		return 0
	}
	span := endTicks - startTicks
	n := span / frameSpacing
	if span%frameSpacing != 0 {
		n++
	}
	return n
}

// remuxEmptyAudio synthesizes a silent AAC segment spanning a video
// fragment's [startDTS, endDTS] (seconds) when no real audio samples
// arrived for it. Delegates to remuxAudio once the silent samples are
// built. Returns nil if no silent frame is available for the track's codec.
func (r *Remuxer) remuxEmptyAudio(audioTrack *AudioTrack, videoStartDTS, videoEndDTS float64, timeOffset float64, videoTimeOffset float64) *TrackResult {
	frame := r.silentFrameFor(audioTrack, nil)
	if frame == nil {
		return nil
	}

	inputTimeScale := int64(audioTrack.InputTimeScale)
	mp4TimeScale := int64(audioTrack.SampleRate)
	if mp4TimeScale == 0 {
		mp4TimeScale = inputTimeScale
	}
	scaleFactor := float64(inputTimeScale) / float64(mp4TimeScale)
	frameSpacing := round(float64(AACSamplesPerFrame) * scaleFactor)

	initDTS := deref(r.initDTS)

	var startTicks int64
	if r.nextAudioPts != nil {
		startTicks = *r.nextAudioPts + initDTS
	} else {
		startTicks = round(videoStartDTS*float64(inputTimeScale)) + initDTS
	}
	endTicks := round(videoEndDTS*float64(inputTimeScale)) + initDTS

	n := getNbrFrames(startTicks, endTicks, frameSpacing)
	if n <= 0 {
		return nil
	}

	samples := make([]Sample, n)
	for i := int64(0); i < n; i++ {
		samples[i] = Sample{
			PTS:  startTicks + i*frameSpacing - initDTS,
			Unit: frame,
		}
	}
	audioTrack.Samples = samples

	accurate := false
	videoOffset := videoTimeOffset
	return r.remuxAudio(audioTrack, timeOffset, r.isAudioContiguous, accurate, &videoOffset, true)
}
