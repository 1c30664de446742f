package mp4

// ISO/IEC 14496-1 ES_Descriptor, carrying the raw AAC decoder config bytes.
type esds struct {
	ESID   uint16
	config []byte
}

func (*esds) Type() BoxType {
	return BoxType{'e', 's', 'd', 's'}
}

// Size returns the marshaled size in bytes: a FullBox header (4) plus the
// ES_Descr (8), DecoderConfigDescr (18), DecSpecificInfo (5+len(config)) and
// SLConfigDescr (6) descriptor headers.
func (b *esds) Size() int {
	return 41 + len(b.config)
}

func (b *esds) Marshal(buf []byte, pos *int) {
	full := FullBox{}
	full.Marshal(buf, pos)

	decSpecificInfoTagSize := uint8(len(b.config))

	Write(buf, pos, []byte{
		ESDescrTag,
		0x80, 0x80, 0x80,
		32 + decSpecificInfoTagSize, // size
		byte(b.ESID >> 8), byte(b.ESID),
		0, // flags
	})

	Write(buf, pos, []byte{
		DecoderConfigDescrTag,
		0x80, 0x80, 0x80,
		18 + decSpecificInfoTagSize, // size

		0x40,    // object type indicator (MPEG-4 Audio)
		0x15,    // stream type and upstream
		0, 0, 0, // buffer size DB
		0, 1, 0xf7, 0x39, // max bitrate
		0, 1, 0xf7, 0x39, // average bitrate
	})

	Write(buf, pos, []byte{
		DecSpecificInfoTag,
		0x80, 0x80, 0x80,
		decSpecificInfoTagSize,
	})
	Write(buf, pos, b.config)

	Write(buf, pos, []byte{
		SLConfigDescrTag,
		0x80, 0x80, 0x80,
		1, // size
		2, // flags
	})
}

// MovieTimescale is the fixed mvhd timescale used throughout the init
// segment; track timescales are set independently per track.
const MovieTimescale = 1000

// StreamInfo describes the track configuration used to build an init
// segment. Exactly one of VideoTrackExist / AudioTrackExist may be false,
// but not both.
type StreamInfo struct {
	VideoTrackExist bool
	VideoTimescale  uint32
	VideoWidth      int
	VideoHeight     int
	VideoSPS        []byte
	VideoPPS        []byte

	AudioTrackExist   bool
	AudioTimescale    uint32 // sample rate for AAC, input clock for raw MPEG
	AudioChannelCount int
	// AudioConfig is the raw AudioSpecificConfig bytes embedded in esds.
	// Empty for raw MPEG audio passthrough, which carries no decoder config.
	AudioConfig []byte
}

func initVideoTrack(trackID int, info StreamInfo) Boxes { //nolint:funlen
	/*
		trak
		- tkhd
		- mdia
		  - mdhd
		  - hdlr
		  - minf
		    - vmhd
		    - dinf
		      - dref
		        - url
		    - stbl
		      - stsd
		        - avc1
		          - avcC
		          - btrt
		      - stts
		      - stsc
		      - stsz
		      - stco
	*/

	stbl := Boxes{
		Box: &Stbl{},
		Children: []Boxes{
			{
				Box: &Stsd{EntryCount: 1},
				Children: []Boxes{
					{
						Box: &Avc1{
							SampleEntry:     SampleEntry{DataReferenceIndex: 1},
							Width:           uint16(info.VideoWidth),
							Height:          uint16(info.VideoHeight),
							Horizresolution: 4718592,
							Vertresolution:  4718592,
							FrameCount:      1,
							Depth:           24,
							PreDefined3:     -1,
						},
						Children: []Boxes{
							{Box: &AvcC{
								ConfigurationVersion: 1,
								Profile:              info.VideoSPS[1],
								ProfileCompatibility: info.VideoSPS[2],
								Level:                info.VideoSPS[3],
								LengthSizeMinusOne:   3,

								NumOfSequenceParameterSets: 1,
								SequenceParameterSets: []AVCParameterSet{
									{Length: uint16(len(info.VideoSPS)), NALUnit: info.VideoSPS},
								},
								NumOfPictureParameterSets: 1,
								PictureParameterSets: []AVCParameterSet{
									{Length: uint16(len(info.VideoPPS)), NALUnit: info.VideoPPS},
								},
							}},
							{Box: &Btrt{MaxBitrate: 1000000, AvgBitrate: 1000000}},
						},
					},
				},
			},
			{Box: &Stts{}},
			{Box: &Stsc{}},
			{Box: &Stsz{}},
			{Box: &Stco{}},
		},
	}

	minf := Boxes{
		Box: &Minf{},
		Children: []Boxes{
			{Box: &Vmhd{FullBox: FullBox{Flags: [3]byte{0, 0, 1}}}},
			{
				Box: &Dinf{},
				Children: []Boxes{
					{
						Box: &Dref{EntryCount: 1},
						Children: []Boxes{
							{Box: &Url{FullBox: FullBox{Flags: [3]byte{0, 0, 1}}}},
						},
					},
				},
			},
			stbl,
		},
	}

	return Boxes{
		Box: &Trak{},
		Children: []Boxes{
			{Box: &Tkhd{
				FullBox: FullBox{Flags: [3]byte{0, 0, 3}},
				TrackID: uint32(trackID),
				Width:   uint32(info.VideoWidth) * 65536,
				Height:  uint32(info.VideoHeight) * 65536,
				Matrix:  [9]int32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000},
			}},
			{
				Box: &Mdia{},
				Children: []Boxes{
					{Box: &Mdhd{Timescale: info.VideoTimescale, Language: [3]byte{'u', 'n', 'd'}}},
					{Box: &Hdlr{HandlerType: [4]byte{'v', 'i', 'd', 'e'}, Name: "VideoHandler"}},
					minf,
				},
			},
		},
	}
}

func initAudioTrack(trackID int, info StreamInfo) Boxes { //nolint:funlen
	/*
		trak
		- tkhd
		- mdia
		  - mdhd
		  - hdlr
		  - minf
		    - smhd
		    - dinf
		      - dref
		        - url
		    - stbl
		      - stsd
		        - mp4a
		          - esds (only when a decoder config is present)
		          - btrt
		      - stts
		      - stsc
		      - stsz
		      - stco
	*/

	mp4aChildren := []Boxes{
		{Box: &Btrt{MaxBitrate: 128825, AvgBitrate: 128825}},
	}
	if len(info.AudioConfig) > 0 {
		mp4aChildren = append([]Boxes{
			{Box: &esds{ESID: uint16(trackID), config: info.AudioConfig}},
		}, mp4aChildren...)
	}

	minf := Boxes{
		Box: &Minf{},
		Children: []Boxes{
			{Box: &Smhd{}},
			{
				Box: &Dinf{},
				Children: []Boxes{
					{
						Box: &Dref{EntryCount: 1},
						Children: []Boxes{
							{Box: &Url{FullBox: FullBox{Flags: [3]byte{0, 0, 1}}}},
						},
					},
				},
			},
			{
				Box: &Stbl{},
				Children: []Boxes{
					{
						Box: &Stsd{EntryCount: 1},
						Children: []Boxes{
							{
								Box: &Mp4a{
									SampleEntry:  SampleEntry{DataReferenceIndex: 1},
									ChannelCount: uint16(info.AudioChannelCount),
									SampleSize:   16,
									SampleRate:   info.AudioTimescale * 65536,
								},
								Children: mp4aChildren,
							},
						},
					},
					{Box: &Stts{}},
					{Box: &Stsc{}},
					{Box: &Stsz{}},
					{Box: &Stco{}},
				},
			},
		},
	}

	return Boxes{
		Box: &Trak{},
		Children: []Boxes{
			{Box: &Tkhd{
				FullBox:        FullBox{Flags: [3]byte{0, 0, 3}},
				TrackID:        uint32(trackID),
				AlternateGroup: 1,
				Volume:         256,
				Matrix:         [9]int32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000},
			}},
			{
				Box: &Mdia{},
				Children: []Boxes{
					{Box: &Mdhd{Timescale: info.AudioTimescale, Language: [3]byte{'u', 'n', 'd'}}},
					{Box: &Hdlr{HandlerType: [4]byte{'s', 'o', 'u', 'n'}, Name: "SoundHandler"}},
					minf,
				},
			},
		},
	}
}

func initMvex(info StreamInfo) Boxes {
	mvex := Boxes{Box: &Mvex{}}
	trackID := 1
	if info.VideoTrackExist {
		mvex.Children = append(mvex.Children, Boxes{Box: &Trex{
			TrackID:                       uint32(trackID),
			DefaultSampleDescriptionIndex: 1,
		}})
		trackID++
	}
	if info.AudioTrackExist {
		mvex.Children = append(mvex.Children, Boxes{Box: &Trex{
			TrackID:                       uint32(trackID),
			DefaultSampleDescriptionIndex: 1,
		}})
	}
	return mvex
}

// BuildInitSegment renders the ftyp+moov init segment for the given track
// configuration. The video track, if present, is always assigned track ID 1;
// the audio track, if present, takes the next free ID.
func BuildInitSegment(info StreamInfo) []byte { //nolint:funlen
	/*
		- ftyp
		- moov
		  - mvhd
		  - trak (video)
		  - trak (audio)
		  - mvex
		    - trex (video)
		    - trex (audio)
	*/

	ftyp := Boxes{
		Box: &Ftyp{
			MajorBrand:   [4]byte{'m', 'p', '4', '2'},
			MinorVersion: 1,
			CompatibleBrands: []CompatibleBrandElem{
				{CompatibleBrand: [4]byte{'m', 'p', '4', '1'}},
				{CompatibleBrand: [4]byte{'m', 'p', '4', '2'}},
				{CompatibleBrand: [4]byte{'i', 's', 'o', 'm'}},
				{CompatibleBrand: [4]byte{'h', 'l', 's', 'f'}},
			},
		},
	}

	moov := Boxes{
		Box: &Moov{},
		Children: []Boxes{
			{Box: &Mvhd{
				Timescale:   MovieTimescale,
				Rate:        65536,
				Volume:      256,
				Matrix:      [9]int32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000},
				NextTrackID: 2,
			}},
		},
	}

	trackID := 1
	if info.VideoTrackExist {
		moov.Children = append(moov.Children, initVideoTrack(trackID, info))
		trackID++
	}
	if info.AudioTrackExist {
		moov.Children = append(moov.Children, initAudioTrack(trackID, info))
	}

	moov.Children = append(moov.Children, initMvex(info))

	size := ftyp.Size() + moov.Size()
	buf := make([]byte, size)
	pos := 0
	ftyp.Marshal(buf, &pos)
	moov.Marshal(buf, &pos)

	return buf
}
