package remux

import "regexp"

// quirks are host-engine feature checks derived once from the vendor/user-
// agent string passed to New. They are configuration, not platform branches
// scattered through the core algorithm.
type quirks struct {
	// requiresPositiveDts clamps the first sample of a video fragment's
	// DTS to be non-negative. Required by older engines that reject a
	// negative baseMediaDecodeTime.
	requiresPositiveDts bool
	// legacyKeyframeWorkaround forces the first output video sample to
	// report as a sync sample even when its flags say otherwise, working
	// around a bug in Chromium versions before 70.
	legacyKeyframeWorkaround bool
}

var chromeVersionRe = regexp.MustCompile(`Chrome/(\d+)`)

// detectQuirks inspects the hosting environment's vendor/user-agent string.
// An empty or unrecognized string leaves both quirks disabled.
func detectQuirks(vendor string) quirks {
	var q quirks

	// Safari on iOS historically required a positive DTS; detect by the
	// presence of "AppleWebKit" without "Chrome" (desktop/mobile Safari).
	if appleWebKitRe.MatchString(vendor) && !chromeVersionRe.MatchString(vendor) {
		q.requiresPositiveDts = true
	}

	if m := chromeVersionRe.FindStringSubmatch(vendor); m != nil {
		if major := parseIntSafe(m[1]); major > 0 && major < 70 {
			q.legacyKeyframeWorkaround = true
		}
	}

	return q
}

var appleWebKitRe = regexp.MustCompile(`AppleWebKit`)

func parseIntSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
