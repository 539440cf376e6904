package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
	Request RequestConfig `yaml:"request"`
	LLM     LLMConfig     `yaml:"llm"`
	TTS     TTSConfig     `yaml:"tts"`
	Spotify SpotifyConfig `yaml:"spotify"`
	Mixer   MixerConfig   `yaml:"mixer"`
	News    NewsConfig    `yaml:"news"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	LLM      LogSettings `yaml:"llm"`
	TTS      LogSettings `yaml:"tts"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path     string   `yaml:"path"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LLMConfig holds settings for the Large Language Model provider.
type LLMConfig struct {
	Provider          string            `yaml:"provider"` // "gemini", "openai"
	Model             string            `yaml:"model"`
	Key               string            `yaml:"key"`
	BaseURL           string            `yaml:"base_url"` // openai-compatible endpoints only
	Profiles          map[string]string `yaml:"profiles"` // Map of intent -> model
	TemperatureBase   float32           `yaml:"temperature_base"`
	TemperatureJitter float32           `yaml:"temperature_jitter"`
	PromptsDir        string            `yaml:"prompts_dir"`
}

// EdgeTTSConfig holds settings for Edge TTS.
type EdgeTTSConfig struct {
	VoiceID string `yaml:"voice"` // e.g. "en-US-AvaMultilingualNeural"
}

// TTSConfig holds Text-To-Speech settings.
type TTSConfig struct {
	Engine   string        `yaml:"engine"`
	AudioDir string        `yaml:"audio_dir"`
	EdgeTTS  EdgeTTSConfig `yaml:"edge_tts"`
}

// SpotifyConfig holds settings for the top-tracks lookup.
type SpotifyConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeRange string `yaml:"time_range"`
	PageSize  int    `yaml:"page_size"`
	MaxTracks int    `yaml:"max_tracks"`
}

// MixerConfig holds segment mixing policy.
type MixerConfig struct {
	MusicCountMin   int    `yaml:"music_count_min"`
	MusicCountMax   int    `yaml:"music_count_max"`
	PlaceholderNews string `yaml:"placeholder_news"`
	Station         string `yaml:"station"` // name the host announces
	Seed            int64  `yaml:"seed"`    // 0 = time based
}

// NewsConfig holds the raw news source settings.
type NewsConfig struct {
	FallbackText string   `yaml:"fallback_text"`
	MaxAge       Duration `yaml:"max_age"`
	Topics       []string `yaml:"topics"`    // listener interests, passed to the summary prompt
	InboxDir     string   `yaml:"inbox_dir"` // dropped .txt/.html files are ingested; empty disables
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:3080",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			LLM: LogSettings{
				Path:  "./logs/llm.log",
				Level: "INFO",
			},
			TTS: LogSettings{
				Path:  "./logs/tts.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path:     "./data/nueslify.db",
			CacheTTL: Duration(7 * Day),
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(120 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash-lite",
			Profiles: map[string]string{
				"news_summary": "gemini-2.5-flash-lite",
				"transition":   "gemini-2.5-flash-lite",
			},
			TemperatureBase:   1.0,
			TemperatureJitter: 0.3,
			PromptsDir:        "configs/prompts",
		},
		TTS: TTSConfig{
			Engine:   "edge-tts",
			AudioDir: "./data/audio",
			EdgeTTS: EdgeTTSConfig{
				VoiceID: "en-US-AvaMultilingualNeural",
			},
		},
		Spotify: SpotifyConfig{
			TimeRange: "medium_term",
			PageSize:  50,
			MaxTracks: 50,
		},
		Mixer: MixerConfig{
			MusicCountMin:   1,
			MusicCountMax:   4,
			PlaceholderNews: "Great news from all around the world",
			Station:         "Nueslify",
		},
		News: NewsConfig{
			FallbackText: "A long news string with every piece of information you could ever want.",
			MaxAge:       Duration(Day),
			Topics:       []string{"technology", "science", "business", "entertainment", "health", "sports"},
			InboxDir:     "./data/inbox",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills secrets from the environment when the file leaves them empty.
// Values found here are never written back to disk.
func applyEnv(cfg *Config) {
	if cfg.LLM.Key == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.Key = os.Getenv("OPENAI_API_KEY")
		default:
			cfg.LLM.Key = os.Getenv("GEMINI_API_KEY")
		}
	}
	if v := os.Getenv("NUESLIFY_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
}

var voiceIDPattern = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}-\w+$`)

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Mixer.MusicCountMin < 1 || c.Mixer.MusicCountMax < c.Mixer.MusicCountMin {
		return fmt.Errorf("invalid mixer music count range [%d, %d]", c.Mixer.MusicCountMin, c.Mixer.MusicCountMax)
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.TTS.Engine {
	case "edge-tts":
		if !voiceIDPattern.MatchString(c.TTS.EdgeTTS.VoiceID) {
			return fmt.Errorf("invalid edge_tts voice '%s': must look like 'en-US-AvaNeural'", c.TTS.EdgeTTS.VoiceID)
		}
	case "none":
	default:
		return fmt.Errorf("unknown tts engine %q", c.TTS.Engine)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Nueslify Configuration
# ----------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
# Secrets may be left empty and supplied via GEMINI_API_KEY / OPENAI_API_KEY.

`)
	data = append(header, data...)

	reEngine := regexp.MustCompile(`(?m)^(\s+)engine:`)
	data = reEngine.ReplaceAll(data, []byte("${1}# Options: edge-tts, none\n${1}engine:"))

	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: gemini, openai\n${1}provider:"))

	reRange := regexp.MustCompile(`(?m)^(\s+)time_range:`)
	data = reRange.ReplaceAll(data, []byte("${1}# Options: short_term, medium_term, long_term\n${1}time_range:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
