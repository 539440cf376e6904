// Package edgetts synthesizes speech through the Microsoft Edge read-aloud service.
package edgetts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"nueslify/pkg/tracker"
	"nueslify/pkg/tts"
)

const providerName = "edge-tts"

// Options are read from EDGE_TTS_* variables; all of them are required.
type Options struct {
	BaseURL            string
	Origin             string
	UserAgent          string
	TrustedClientToken string
	GecVersion         string
}

func OptionsFromEnv() Options {
	return Options{
		BaseURL:            os.Getenv("EDGE_TTS_BASE_URL"),
		Origin:             os.Getenv("EDGE_TTS_ORIGIN"),
		UserAgent:          os.Getenv("EDGE_TTS_USER_AGENT"),
		TrustedClientToken: os.Getenv("EDGE_TTS_TRUSTED_CLIENT_TOKEN"),
		GecVersion:         os.Getenv("EDGE_TTS_SEC_MS_GEC_VERSION"),
	}
}

// Validate names the first missing variable.
func (o Options) Validate() error {
	required := [][2]string{
		{"EDGE_TTS_BASE_URL", o.BaseURL},
		{"EDGE_TTS_ORIGIN", o.Origin},
		{"EDGE_TTS_USER_AGENT", o.UserAgent},
		{"EDGE_TTS_TRUSTED_CLIENT_TOKEN", o.TrustedClientToken},
		{"EDGE_TTS_SEC_MS_GEC_VERSION", o.GecVersion},
	}
	for _, r := range required {
		if r[1] == "" {
			return fmt.Errorf("%s is required", r[0])
		}
	}
	return nil
}

type Provider struct {
	opts      Options
	tracker   *tracker.Tracker
	dialer    *websocket.Dialer
	dialTries int
	dialPause time.Duration
}

// NewProvider accepts a nil tracker.
func NewProvider(opts Options, t *tracker.Tracker) *Provider {
	return &Provider{
		opts:      opts,
		tracker:   t,
		dialer:    websocket.DefaultDialer,
		dialTries: 3,
		dialPause: 500 * time.Millisecond,
	}
}

// Synthesize writes an mp3 to outputPath (".mp3" is appended if missing).
// Nothing is written unless enough audio arrived.
func (p *Provider) Synthesize(ctx context.Context, text, voice, outputPath string) (format string, err error) {
	if voice == "" {
		return "", errors.New("voice ID is required")
	}
	if err := p.opts.Validate(); err != nil {
		return "", err
	}
	text = tts.StripSpeakerLabels(text)
	if !strings.HasSuffix(strings.ToLower(outputPath), ".mp3") {
		outputPath += ".mp3"
	}

	start := time.Now()
	defer func() {
		tts.Log(tts.Entry{Provider: providerName, Voice: voice, Text: text, Took: time.Since(start), Err: err})
		if err != nil && p.tracker != nil {
			p.tracker.TrackAPIFailure(providerName)
		}
	}()

	audio, err := p.stream(ctx, voice, text)
	if err != nil {
		return "", err
	}
	if err := tts.CheckAudio(audio); err != nil {
		return "", err
	}
	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}

	if p.tracker != nil {
		p.tracker.TrackAPISuccess(providerName, time.Since(start))
	}
	return "mp3", nil
}

// stream runs one synthesis turn and collects the audio frames.
func (p *Provider) stream(ctx context.Context, voice, text string) ([]byte, error) {
	conn, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, configFrame()); err != nil {
		return nil, fmt.Errorf("failed to send speech.config: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, ssmlFrame(newID(), voice, text)); err != nil {
		return nil, fmt.Errorf("failed to send ssml: %w", err)
	}

	// ReadMessage does not take a context
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var audio bytes.Buffer
	for {
		kind, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read message failed: %w", err)
		}
		switch kind {
		case websocket.BinaryMessage:
			audio.Write(audioPayload(frame))
		case websocket.TextMessage:
			if isTurnEnd(frame) {
				return audio.Bytes(), nil
			}
		}
	}
}

func (p *Provider) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{
		"Origin":          {p.opts.Origin},
		"Pragma":          {"no-cache"},
		"Cache-Control":   {"no-cache"},
		"User-Agent":      {p.opts.UserAgent},
		"Accept-Language": {"en-US,en;q=0.9"},
		"Cookie":          {"muid=" + newID()},
	}
	q := url.Values{
		"TrustedClientToken": {p.opts.TrustedClientToken},
		"Sec-MS-GEC":         {gecToken(p.opts.TrustedClientToken, time.Now())},
		"Sec-MS-GEC-Version": {p.opts.GecVersion},
	}
	target := p.opts.BaseURL + "?" + q.Encode()

	var lastErr error
	for range p.dialTries {
		conn, resp, err := p.dialer.DialContext(ctx, target, header)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if resp != nil {
			slog.Warn("EdgeTTS: Handshake failed", "status", resp.StatusCode)
			tts.Log(tts.Entry{Provider: providerName, Text: "handshake", Status: resp.StatusCode, Err: err})
			if refused(resp.StatusCode) {
				return nil, tts.NewFatalError(resp.StatusCode, "edge-tts handshake rejected")
			}
		}
		select {
		case <-time.After(p.dialPause):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("websocket dial failed after %d tries: %w", p.dialTries, lastErr)
}

// refused reports handshake statuses that retrying won't fix.
func refused(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

var neuralVoices = []tts.Voice{
	{ID: "en-US-AvaMultilingualNeural", Name: "Ava (Multilingual)", Language: "en-US", IsNeural: true},
	{ID: "en-US-AndrewMultilingualNeural", Name: "Andrew (Multilingual)", Language: "en-US", IsNeural: true},
	{ID: "en-GB-SoniaNeural", Name: "Sonia (UK)", Language: "en-GB", IsNeural: true},
	{ID: "en-GB-RyanNeural", Name: "Ryan (UK)", Language: "en-GB", IsNeural: true},
	{ID: "fr-FR-VivienneNeural", Name: "Vivienne (France)", Language: "fr-FR", IsNeural: true},
	{ID: "de-DE-SeraphinaNeural", Name: "Seraphina (Germany)", Language: "de-DE", IsNeural: true},
}

// Voices returns a fixed selection of neural voices that work well for a host.
func (p *Provider) Voices(context.Context) ([]tts.Voice, error) {
	return append([]tts.Voice(nil), neuralVoices...), nil
}
