package remux

import "github.com/devoldemar/hls.js/internal/metrics"

// PlaylistType identifies which manifest track a Remux call is fragmenting
// for. Remux accepts it but does not consult it.
type PlaylistType string

// PlaylistType values.
const (
	PlaylistAudio    PlaylistType = "audio"
	PlaylistVideo    PlaylistType = "video"
	PlaylistSubtitle PlaylistType = "subtitle"
)

func maxf64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Remux is the top-level orchestrator. It enforces the
// wait-for-both-tracks gate, computes the audio/video start-time alignment,
// sequences the per-track remuxers (audio before video, so the video
// remuxer can read nextAudioPts for stretchShortVideoTrack), flushes
// metadata/caption cues, and regenerates the init segment if a track's
// timescale was unknown when it was first emitted.
func (r *Remuxer) Remux(
	audio *AudioTrack,
	video *VideoTrack,
	id3 *MetadataTrack,
	text *UserDataTrack,
	timeOffset float64,
	accurateTimeOffset bool,
	flush bool,
	_ PlaylistType,
) RemuxResult {
	hasAudio := audio != nil && audio.PID > -1
	hasVideo := video != nil && video.PID > -1
	enoughAudio := audio != nil && len(audio.Samples) > 0
	enoughVideo := video != nil && len(video.Samples) > 1

	proceed := ((!hasAudio || enoughAudio) && (!hasVideo || enoughVideo)) || r.isGenerated || flush
	if !proceed {
		return RemuxResult{}
	}

	var result RemuxResult

	if !r.isGenerated {
		result.InitSegment = r.generateInitSegment(video, audio, timeOffset)
	}

	videoTimeOffset := timeOffset
	audioTimeOffset := timeOffset

	kf := -1
	if hasVideo && len(video.Samples) > 0 {
		kf = firstKeyframeIndex(video.Samples)
	}

	if hasVideo && enoughVideo && !r.isVideoContiguous && r.config.ForceKeyFrameOnDiscontinuity {
		switch {
		case kf > 0:
			videoStart := videoStartPts(video.Samples)
			droppedFirstPTS := video.Samples[kf].PTS
			video.Samples = video.Samples[kf:]
			video.Dropped += uint32(kf)
			videoTimeOffset += float64(droppedFirstPTS-videoStart) / float64(video.InputTimeScale)
			enoughVideo = len(video.Samples) > 1
			metrics.DroppedSamples.WithLabelValues("video", "keyframe_discontinuity_trim").Add(float64(kf))
		case kf == -1:
			r.observer.Notify(Event{Kind: EventMissingKeyframe, Track: "video", Reason: "no keyframe found at discontinuity"})
		}
	}

	// AV start-time alignment: push only the non-negative side of the
	// delta onto each axis, never subtract.
	if hasVideo && hasAudio && enoughVideo && enoughAudio {
		videoStart := videoStartPts(video.Samples)
		anchor := videoStart
		tsDelta := normalize(audio.Samples[0].PTS, &anchor) - videoStart
		deltaSeconds := float64(tsDelta) / float64(video.InputTimeScale)
		audioTimeOffset += maxf64(0, deltaSeconds)
		videoTimeOffset += maxf64(0, -deltaSeconds)
	}

	audioSampleRateWasZero := hasAudio && audio.IsAAC && audio.SampleRate == 0
	videoTimeScaleWasZero := hasVideo && video.InputTimeScale == 0

	var videoOffsetForAudio *float64
	if hasVideo {
		v := videoTimeOffset
		videoOffsetForAudio = &v
	}

	if hasAudio && enoughAudio {
		result.Audio = r.remuxAudio(audio, audioTimeOffset, r.isAudioContiguous, accurateTimeOffset, videoOffsetForAudio, hasVideo)
	}

	if hasVideo && enoughVideo {
		audioLength := 0.0
		if result.Audio != nil {
			audioLength = result.Audio.EndPTS - result.Audio.StartPTS
		}
		result.Video = r.remuxVideo(video, videoTimeOffset, r.isVideoContiguous, audioLength)
		if result.Video != nil {
			result.Video.FirstKeyFrame = kf
			result.Video.Independent = kf != -1
		}
	}

	// A declared audio track with nothing to remux this round (e.g. an
	// audio-less source chunk) still needs a segment so the audio buffer
	// doesn't starve while video keeps advancing.
	if hasAudio && !enoughAudio && hasVideo && result.Video != nil {
		result.Audio = r.remuxEmptyAudio(audio, result.Video.StartDTS, result.Video.EndDTS, audioTimeOffset, videoTimeOffset)
	}

	if (audioSampleRateWasZero && hasAudio && audio.SampleRate != 0) ||
		(videoTimeScaleWasZero && hasVideo && video.InputTimeScale != 0) {
		if regen := r.generateInitSegment(video, audio, timeOffset); regen != nil {
			result.InitSegment = regen
		}
	}

	if r.isGenerated {
		result.ID3 = r.flushMetadata(id3, timeOffset)
		result.Text = r.flushUserData(text, timeOffset)
	}

	result.Independent = kf != -1

	return result
}
