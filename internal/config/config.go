// Package config loads the YAML-tagged tunables consumed by the remuxer
// core (forceKeyFrameOnDiscontinuity, stretchShortVideoTrack, maxBufferHole,
// maxAudioFramesDrift). Reading a file from disk is the hosting
// application's concern; this package only defines the shape and sensible
// defaults.
package config

import (
	"gopkg.in/yaml.v2"

	"github.com/devoldemar/hls.js/pkg/remux"
)

// Default returns the configuration the original player shipped with.
func Default() remux.Config {
	return remux.Config{
		ForceKeyFrameOnDiscontinuity: true,
		StretchShortVideoTrack:       false,
		MaxBufferHole:                0.5,
		MaxAudioFramesDrift:          1,
	}
}

// Parse unmarshals YAML bytes into a remux.Config seeded with Default()
// values for any field the document omits.
func Parse(data []byte) (remux.Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return remux.Config{}, err
	}
	return cfg, nil
}
