package remux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectQuirksSafari(t *testing.T) {
	q := detectQuirks("Mozilla/5.0 (Macintosh) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Safari/605.1.15")
	assert.True(t, q.requiresPositiveDts)
	assert.False(t, q.legacyKeyframeWorkaround)
}

func TestDetectQuirksOldChrome(t *testing.T) {
	q := detectQuirks("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/60.0.3112.113 Safari/537.36")
	assert.False(t, q.requiresPositiveDts)
	assert.True(t, q.legacyKeyframeWorkaround)
}

func TestDetectQuirksModernChrome(t *testing.T) {
	q := detectQuirks("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.False(t, q.requiresPositiveDts)
	assert.False(t, q.legacyKeyframeWorkaround)
}

func TestDetectQuirksEmptyVendor(t *testing.T) {
	q := detectQuirks("")
	assert.False(t, q.requiresPositiveDts)
	assert.False(t, q.legacyKeyframeWorkaround)
}
