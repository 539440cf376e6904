package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAudio(t *testing.T) {
	assert.ErrorIs(t, CheckAudio(nil), ErrTooShort)
	assert.ErrorIs(t, CheckAudio(make([]byte, MinAudioSize-1)), ErrTooShort)
	assert.NoError(t, CheckAudio(make([]byte, MinAudioSize)))
}

func TestStripSpeakerLabels(t *testing.T) {
	for in, want := range map[string]string{
		"Host: Up next, the news.":                   "Up next, the news.",
		"DJ (warm): Good morning!\nHost: And now...": "Good morning!\nAnd now...",
		"No label here: really":                      "No label here: really",
	} {
		assert.Equal(t, want, StripSpeakerLabels(in), in)
	}
}
