// Package tts defines the speech synthesis contract used for spoken transitions.
package tts

import (
	"context"
	"errors"
	"fmt"
)

// MinAudioSize is the smallest output accepted as real speech. Anything
// shorter is treated as a failed synthesis.
const MinAudioSize = 1024

// Provider turns a transition script into an audio file.
type Provider interface {
	// Synthesize writes the spoken text to outputPath and reports the
	// container format ("mp3", "wav").
	Synthesize(ctx context.Context, text, voice, outputPath string) (string, error)
	Voices(ctx context.Context) ([]Voice, error)
}

type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	IsNeural bool   `json:"is_neural"`
}

// FatalError is returned when the engine refused the request outright
// (auth, quota, upstream outage). Retrying the same call right away is pointless.
type FatalError struct {
	StatusCode int
	Message    string
}

func (e *FatalError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func NewFatalError(statusCode int, message string) *FatalError {
	return &FatalError{StatusCode: statusCode, Message: message}
}

// IsFatalError reports whether err wraps a FatalError.
func IsFatalError(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
