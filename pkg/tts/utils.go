package tts

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrTooShort marks synthesis output below MinAudioSize.
var ErrTooShort = errors.New("synthesized audio too short")

// "Host:", "DJ (warm):" and similar at the start of a line
var speakerLabel = regexp.MustCompile(`(?m)^[A-Za-z]+(\s*\([^)]+\))?:\s*`)

// StripSpeakerLabels removes script-style speaker prefixes so they are not read aloud.
func StripSpeakerLabels(script string) string {
	return speakerLabel.ReplaceAllString(script, "")
}

// CheckAudio rejects output too small to be speech.
func CheckAudio(audio []byte) error {
	if len(audio) < MinAudioSize {
		return fmt.Errorf("%w: %d bytes", ErrTooShort, len(audio))
	}
	return nil
}
