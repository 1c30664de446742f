package remux

import (
	"math"

	"github.com/devoldemar/hls.js/pkg/mp4"
)

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// generateInitSegment builds one ftyp+moov per live track, keyed
// "video"/"audio" in the returned map so the host can tell when it
// must re-append an init segment versus reuse one. On the first call for a
// session it also establishes initPTS/initDTS, the anchors every subsequent
// normalize() call against this remuxer's tracks is relative to.
func (r *Remuxer) generateInitSegment(video *VideoTrack, audio *AudioTrack, timeOffset float64) *InitSegmentResult {
	computeAnchors := r.initPTS == nil

	hasVideo := video != nil && video.PID > -1 && video.SPS != nil && video.PPS != nil && len(video.Samples) > 0
	hasAudio := audio != nil && audio.PID > -1 && len(audio.Samples) > 0 &&
		((audio.IsAAC && len(audio.Config) > 0) || (!audio.IsAAC && audio.Codec != ""))

	if !hasVideo && !hasAudio {
		return nil
	}

	tracks := make(map[string]InitSegmentTrack, 2)

	var initPTS, initDTS int64
	if computeAnchors {
		initPTS = math.MaxInt64
		initDTS = math.MaxInt64
	}

	if hasAudio {
		audio.Timescale = audio.SampleRate

		container := "audio/mp4"
		codec := audio.ManifestCodec
		var config []byte
		timescale := audio.SampleRate

		switch {
		case audio.IsAAC:
			config = audio.Config
		case r.typeSupported.MPEG:
			// Native audio/mpeg playback: media segments for this track
			// carry raw frames with no ISO BMFF wrapper, so there is
			// nothing for a moov trak to describe — the init segment is
			// empty and the codec string is cleared.
			container = "audio/mpeg"
			codec = ""
			timescale = audio.InputTimeScale
		case r.typeSupported.MP3:
			container = "audio/mp4"
			codec = "mp3"
			timescale = audio.InputTimeScale
		default:
			// Neither native MPEG nor mp3-in-mp4 is supported by
			// the sink: no audio init segment can be offered.
			hasAudio = false
		}

		if hasAudio {
			var segment []byte
			if container != "audio/mpeg" {
				info := mp4.StreamInfo{
					AudioTrackExist:   true,
					AudioTimescale:    timescale,
					AudioChannelCount: int(audio.ChannelCount),
					AudioConfig:       config,
				}
				segment = mp4.BuildInitSegment(info)
			}
			tracks["audio"] = InitSegmentTrack{
				ID:           "audio",
				Container:    container,
				Codec:        codec,
				ChannelCount: audio.ChannelCount,
				InitSegment:  segment,
			}

			if computeAnchors {
				startOffset := round(float64(audio.InputTimeScale) * timeOffset)
				anchor := audio.Samples[0].PTS - startOffset
				initPTS = anchor
				initDTS = anchor
			}
		}
	}

	if hasVideo {
		video.Timescale = video.InputTimeScale

		info := mp4.StreamInfo{
			VideoTrackExist: true,
			VideoTimescale:  video.Timescale,
			VideoWidth:      video.Width,
			VideoHeight:     video.Height,
			VideoSPS:        video.SPS,
			VideoPPS:        video.PPS,
		}
		tracks["video"] = InitSegmentTrack{
			ID:          "main",
			Container:   "video/mp4",
			Codec:       "avc1",
			InitSegment: mp4.BuildInitSegment(info),
		}

		if computeAnchors {
			startPTS := videoStartPts(video.Samples)
			startOffset := round(float64(video.InputTimeScale) * timeOffset)
			anchor := startPTS
			dtsNorm := normalize(video.Samples[0].DTS, &anchor)
			initDTS = minI64(initDTS, dtsNorm-startOffset)
			initPTS = minI64(initPTS, startPTS-startOffset)
		}
	}

	if len(tracks) == 0 {
		return nil
	}

	r.isGenerated = true
	if computeAnchors {
		r.initPTS = ref2(initPTS)
		r.initDTS = ref2(initDTS)
	}

	return &InitSegmentResult{
		Tracks:    tracks,
		InitPTS:   deref(r.initPTS),
		Timescale: mp4.MovieTimescale,
	}
}
