package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSilence(t *testing.T, path string, rate beep.SampleRate, d time.Duration) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(rate.N(d)), format))
}

func TestGetDuration_WAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.wav")
	writeSilence(t, path, 24000, 1500*time.Millisecond)

	d, err := GetDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, float64(1500*time.Millisecond), float64(d), float64(time.Millisecond))
}

func TestGetDuration_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := GetDuration(filepath.Join(dir, "missing.mp3"))
	assert.Error(t, err)

	_, err = GetDuration(filepath.Join(dir, "clip.ogg"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	bogus := filepath.Join(dir, "bogus.wav")
	require.NoError(t, os.WriteFile(bogus, []byte("definitely not RIFF"), 0o644))
	_, err = GetDuration(bogus)
	assert.Error(t, err)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "audio/mpeg", MimeType("mp3"))
	assert.Equal(t, "audio/wav", MimeType("WAV"))
	assert.Equal(t, "application/octet-stream", MimeType(""))
}
