// Package metrics exposes the prometheus counters the remuxer core updates
// inline on its single-threaded call path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AllocErrors counts mdat allocation failures by track ("video"/"audio").
	AllocErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remux",
			Name:      "alloc_errors_total",
			Help:      "Total mdat allocation failures.",
		},
		[]string{"track"},
	)

	// SamplesRepaired counts per-sample repairs applied before emit, by
	// track and repair kind (disorder_sort, pts_dts_repair, hole_absorbed,
	// overlap_absorbed, silence_inserted).
	SamplesRepaired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remux",
			Name:      "samples_repaired_total",
			Help:      "Total samples touched by a repair step before emit.",
		},
		[]string{"track", "kind"},
	)

	// SegmentsEmitted counts successfully emitted media segments by track.
	SegmentsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remux",
			Name:      "segments_emitted_total",
			Help:      "Total media segments emitted.",
		},
		[]string{"track"},
	)

	// DroppedSamples counts samples dropped (keyframe-discontinuity trim,
	// negative-PTS audio) by track and reason.
	DroppedSamples = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remux",
			Name:      "dropped_samples_total",
			Help:      "Total input samples dropped before emit.",
		},
		[]string{"track", "reason"},
	)
)
