package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name          string
		content       string // empty = no file
		validate      func(*testing.T, *Config)
		checkFile     func(*testing.T, string)
		expectedError bool
	}{
		{
			name: "NewFile_Defaults",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "edge-tts", cfg.TTS.Engine)
				assert.Equal(t, 1, cfg.Mixer.MusicCountMin)
				assert.Equal(t, 4, cfg.Mixer.MusicCountMax)
				assert.Equal(t, "gemini", cfg.LLM.Provider)
			},
			checkFile: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Contains(t, string(content), "engine: edge-tts")
				assert.Contains(t, string(content), "# Options: edge-tts, none")
				assert.Contains(t, string(content), "music_count_max: 4")
			},
		},
		{
			name:    "ExistingFile_Override",
			content: "tts:\n  engine: none\nmixer:\n  music_count_max: 6\n  placeholder_news: Hallo\nnews:\n  max_age: 2d\n",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "none", cfg.TTS.Engine)
				assert.Equal(t, 6, cfg.Mixer.MusicCountMax)
				assert.Equal(t, 1, cfg.Mixer.MusicCountMin, "unset keys keep defaults")
				assert.Equal(t, "Hallo", cfg.Mixer.PlaceholderNews)
				assert.Equal(t, 48*time.Hour, time.Duration(cfg.News.MaxAge))
			},
			checkFile: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.False(t, strings.Contains(string(content), "# Nueslify Configuration"), "existing file must not be rewritten")
			},
		},
		{
			name:          "InvalidRange",
			content:       "mixer:\n  music_count_min: 5\n  music_count_max: 2\n",
			expectedError: true,
		},
		{
			name:          "ZeroMusicCount",
			content:       "mixer:\n  music_count_min: 0\n  music_count_max: 0\n",
			expectedError: true,
		},
		{
			name:          "UnknownEngine",
			content:       "tts:\n  engine: windows-sapi\n",
			expectedError: true,
		},
		{
			name:          "BadYAML",
			content:       "mixer: [",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "configs", "nueslify.yaml")
			if tt.content != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			cfg, err := Load(path)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
			if tt.checkFile != nil {
				tt.checkFile(t, path)
			}
		})
	}
}

func TestLoad_EnvKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "nueslify.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.Key)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "from-env")
}

func TestGenerateDefault_KeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nueslify.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: x\n"), 0o644))

	require.NoError(t, GenerateDefault(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "server:\n  address: x\n", string(content))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"90s", 90 * time.Second, false},
		{"1d", Day, false},
		{"1w", Week, false},
		{"1d12h", Day + 12*time.Hour, false},
		{"2w3d", 2*Week + 3*Day, false},
		{"0.5d", 12 * time.Hour, false},
		{"d", 0, true},
		{"1dx", 0, true},
		{"abc", 0, true},
		{"3x", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}{Duration(2 * Day), Duration(90 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, "a: 2d\nb: 1h30m0s\n", string(out))
}
