package mp4

// VideoSampleLayout is the sample table entry for one AVC access unit
// together with its already-packed NALU payload (each NAL unit prefixed by
// its 4-byte big-endian length, ready to be copied into mdat verbatim).
type VideoSampleLayout struct {
	Duration  uint32
	CTS       int32
	NonSync   bool
	DependsOn uint8 // 1 = depends on other samples, 2 = does not (sync sample)
	Payload   []byte
}

// AudioSampleLayout is the sample table entry for one audio frame.
type AudioSampleLayout struct {
	Duration uint32
	Payload  []byte
}

func (s VideoSampleLayout) flags() uint32 {
	flags := uint32(s.DependsOn&0x3) << 24
	if s.NonSync {
		flags |= 1 << 16
	}
	return flags
}

func videoTraf(trackID uint32, baseDTS uint64, samples []VideoSampleLayout, dataOffset int32) Boxes {
	tfhd := &Tfhd{
		FullBox: FullBox{Flags: [3]byte{2, 0, 0}},
		TrackID: trackID,
	}

	tfdt := &Tfdt{
		FullBox:               FullBox{Version: 1},
		BaseMediaDecodeTimeV1: baseDTS,
	}

	flags := 0
	flags |= 0x01  // data offset present
	flags |= 0x100 // sample duration present
	flags |= 0x200 // sample size present
	flags |= 0x400 // sample flags present
	flags |= 0x800 // sample composition time offset present (v1, signed)

	trun := &Trun{
		FullBox: FullBox{
			Version: 1,
			Flags:   [3]byte{0, byte(flags >> 8), byte(flags)},
		},
		SampleCount: uint32(len(samples)),
		DataOffset:  dataOffset,
	}

	trun.Entries = make([]TrunEntry, len(samples))
	for i, s := range samples {
		trun.Entries[i] = TrunEntry{
			SampleDuration:                s.Duration,
			SampleSize:                    uint32(len(s.Payload)),
			SampleFlags:                   s.flags(),
			SampleCompositionTimeOffsetV1: s.CTS,
		}
	}

	return Boxes{
		Box: &Traf{},
		Children: []Boxes{
			{Box: tfhd},
			{Box: tfdt},
			{Box: trun},
		},
	}
}

func audioTraf(trackID uint32, baseDTS uint64, samples []AudioSampleLayout, dataOffset int32) Boxes {
	tfhd := &Tfhd{
		FullBox: FullBox{Flags: [3]byte{2, 0, 0}},
		TrackID: trackID,
	}

	tfdt := &Tfdt{
		FullBox:               FullBox{Version: 1},
		BaseMediaDecodeTimeV1: baseDTS,
	}

	flags := 0
	flags |= 0x01  // data offset present
	flags |= 0x100 // sample duration present
	flags |= 0x200 // sample size present

	trun := &Trun{
		FullBox: FullBox{
			Version: 0,
			Flags:   [3]byte{0, byte(flags >> 8), byte(flags)},
		},
		SampleCount: uint32(len(samples)),
		DataOffset:  dataOffset,
	}

	trun.Entries = make([]TrunEntry, len(samples))
	for i, s := range samples {
		trun.Entries[i] = TrunEntry{
			SampleDuration: s.Duration,
			SampleSize:     uint32(len(s.Payload)),
		}
	}

	return Boxes{
		Box: &Traf{},
		Children: []Boxes{
			{Box: tfhd},
			{Box: tfdt},
			{Box: trun},
		},
	}
}

type rawMdat struct {
	payloads [][]byte
}

func (*rawMdat) Type() BoxType {
	return BoxType{'m', 'd', 'a', 't'}
}

func (b *rawMdat) Size() int {
	total := 0
	for _, p := range b.payloads {
		total += len(p)
	}
	return total
}

func (b *rawMdat) Marshal(buf []byte, pos *int) {
	for _, p := range b.payloads {
		Write(buf, pos, p)
	}
}

// BuildMediaSegment renders the moof and mdat boxes for one or both of a
// video and an audio track fragment, returned separately so the caller can
// verify Σ(sample sizes)+8 == len(mdat) independently of the moof. Either
// sample slice may be empty, in which case that track is omitted from the
// moof. baseDTS values are in the track's own timescale (the tfdt
// baseMediaDecodeTime).
func BuildMediaSegment(
	sequenceNumber uint32,
	videoTrackID uint32,
	videoBaseDTS uint64,
	video []VideoSampleLayout,
	audioTrackID uint32,
	audioBaseDTS uint64,
	audio []AudioSampleLayout,
) (moofBytes, mdatBytes []byte) {
	/*
		moof
		- mfhd
		- traf (video)
		- traf (audio)
		mdat
	*/

	moof := Boxes{
		Box: &Moof{},
		Children: []Boxes{
			{Box: &Mfhd{SequenceNumber: sequenceNumber}},
		},
	}

	videoSize := 0
	for _, s := range video {
		videoSize += len(s.Payload)
	}

	// dataOffset is relative to the start of the moof box; it must point
	// past the mdat header (8 bytes) to the first byte of this track's
	// payload inside mdat. The trun's own size does not depend on the
	// value of dataOffset, only on whether it is present, so it is safe
	// to build the traf once with a placeholder and measure it.
	var videoTrafBox, audioTrafBox Boxes
	if len(video) > 0 {
		videoTrafBox = videoTraf(videoTrackID, videoBaseDTS, video, 0)
	}
	if len(audio) > 0 {
		audioTrafBox = audioTraf(audioTrackID, audioBaseDTS, audio, 0)
	}

	moofSize := moof.Size()
	if len(video) > 0 {
		moofSize += videoTrafBox.Size()
	}
	if len(audio) > 0 {
		moofSize += audioTrafBox.Size()
	}
	mdatOffset := moofSize

	payloads := make([][]byte, 0, len(video)+len(audio))

	if len(video) > 0 {
		videoTrafBox = videoTraf(videoTrackID, videoBaseDTS, video, int32(mdatOffset+8))
		moof.Children = append(moof.Children, videoTrafBox)
		for _, s := range video {
			payloads = append(payloads, s.Payload)
		}
	}

	if len(audio) > 0 {
		audioDataOffset := int32(mdatOffset + 8 + videoSize)
		audioTrafBox = audioTraf(audioTrackID, audioBaseDTS, audio, audioDataOffset)
		moof.Children = append(moof.Children, audioTrafBox)
		for _, s := range audio {
			payloads = append(payloads, s.Payload)
		}
	}

	mdat := Boxes{Box: &rawMdat{payloads: payloads}}

	moofBytes = make([]byte, moof.Size())
	moofPos := 0
	moof.Marshal(moofBytes, &moofPos)

	mdatBytes = make([]byte, mdat.Size())
	mdatPos := 0
	mdat.Marshal(mdatBytes, &mdatPos)

	return moofBytes, mdatBytes
}
