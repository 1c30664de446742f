package remux

import "sort"

// flushMetadata rebases every pending ID3 cue's PTS/DTS into the
// presentation clock established by initPTS/initDTS, anchored to the
// fragment's nominal start (timeOffset·inputTimeScale) so cues normalize
// against the same reference the fragment's samples do, and drains the
// track's buffer. The rebased values stay in input-timescale ticks; they are
// not converted to seconds. Returns nil if there was nothing pending.
func (r *Remuxer) flushMetadata(track *MetadataTrack, timeOffset float64) *MetadataTrack {
	if track == nil || len(track.Samples) == 0 {
		return nil
	}

	reference := round(float64(track.InputTimeScale) * timeOffset)

	out := make([]MetadataCue, len(track.Samples))
	for i, c := range track.Samples {
		ptsAnchor := reference
		pts := normalize(c.PTS-deref(r.initPTS), &ptsAnchor)
		dtsAnchor := reference
		dts := normalize(c.DTS-deref(r.initDTS), &dtsAnchor)
		out[i] = MetadataCue{PTS: pts, DTS: dts, Data: c.Data}
	}
	track.Samples = nil

	return &MetadataTrack{PID: track.PID, Samples: out, InputTimeScale: track.InputTimeScale}
}

// flushUserData rebases caption cue PTS values, anchored to the fragment's
// nominal start the same way flushMetadata is, sorts them ascending
// (captions may arrive interleaved across CEA-608 fields), and drains the
// track's buffer. As in flushMetadata, the values stay in input-timescale
// ticks.
func (r *Remuxer) flushUserData(track *UserDataTrack, timeOffset float64) *UserDataTrack {
	if track == nil || len(track.Samples) == 0 {
		return nil
	}

	reference := round(float64(track.InputTimeScale) * timeOffset)

	out := make([]UserDataCue, len(track.Samples))
	for i, c := range track.Samples {
		anchor := reference
		out[i] = UserDataCue{PTS: normalize(c.PTS-deref(r.initPTS), &anchor), Data: c.Data}
	}
	track.Samples = nil

	sort.SliceStable(out, func(i, j int) bool { return out[i].PTS < out[j].PTS })

	return &UserDataTrack{PID: track.PID, Samples: out, InputTimeScale: track.InputTimeScale}
}
