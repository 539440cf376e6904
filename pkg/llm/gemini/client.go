package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"nueslify/pkg/config"
	"nueslify/pkg/llm"
	"nueslify/pkg/tracker"
)

const providerName = "gemini"

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("gemini client not configured")

// Client implements llm.Provider for Google Gemini.
type Client struct {
	genaiClient *genai.Client
	modelName   string
	profiles    map[string]string // intent -> model
	tracker     *tracker.Tracker
	history     *llm.History

	temperatureBase   float32
	temperatureJitter float32

	mu sync.RWMutex
}

// NewClient creates a new Gemini client.
func NewClient(cfg config.LLMConfig, history *llm.History, t *tracker.Tracker) (*Client, error) {
	c := &Client{tracker: t, history: history}
	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure updates the client with new settings.
func (c *Client) Configure(cfg config.LLMConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.modelName = cfg.Model
	if c.modelName == "" {
		c.modelName = "gemini-2.5-flash-lite"
	}
	c.profiles = cfg.Profiles
	c.temperatureBase = cfg.TemperatureBase
	c.temperatureJitter = cfg.TemperatureJitter

	if cfg.Key == "" {
		c.genaiClient = nil
		return nil
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.Key,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	c.genaiClient = client
	return nil
}

// HasProfile reports whether the intent maps to an explicit model.
func (c *Client) HasProfile(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profiles[name] != ""
}

// HealthCheck looks up the default model once.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	client := c.genaiClient
	model := c.modelName
	c.mu.RUnlock()

	if client == nil {
		return ErrNotConfigured
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	if _, err := client.Models.Get(ctx, model, nil); err != nil {
		return fmt.Errorf("model %s unavailable: %w", model, err)
	}
	return nil
}

// GenerateText sends a prompt and returns the text response.
func (c *Client) GenerateText(ctx context.Context, profile, prompt string) (string, error) {
	c.mu.RLock()
	client := c.genaiClient
	modelName, cfg := c.resolveModel(profile)
	c.mu.RUnlock()

	if client == nil {
		return "", ErrNotConfigured
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), cfg)
	if err != nil {
		c.fail(profile, prompt, err)
		return "", fmt.Errorf("generate text error: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		c.fail(profile, prompt, err)
		return "", err
	}

	c.history.Record(providerName, profile, prompt, text, nil)
	if c.tracker != nil {
		c.tracker.TrackAPISuccess(providerName, time.Since(start))
	}
	slog.Debug("Gemini: text generated", "profile", profile, "model", modelName, "chars", len(text), "took", time.Since(start))
	return text, nil
}

func (c *Client) fail(profile, prompt string, err error) {
	c.history.Record(providerName, profile, prompt, "", err)
	if c.tracker != nil {
		c.tracker.TrackAPIFailure(providerName)
	}
}

// resolveModel returns the target model name and configuration for the given intent.
// Caller holds c.mu.
func (c *Client) resolveModel(intent string) (string, *genai.GenerateContentConfig) {
	target := c.modelName
	if m := c.profiles[intent]; m != "" {
		target = m
	}

	cfg := &genai.GenerateContentConfig{}
	// Transition scripts get varied wording; summaries stay at the model default.
	if intent == llm.ProfileTransition && c.temperatureBase > 0 {
		temp := llm.SampleTemperature(c.temperatureBase, c.temperatureJitter)
		cfg.Temperature = &temp
	}
	return target, cfg
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("candidate has no content (finish reason %q)", cand.FinishReason)
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response text")
	}
	return sb.String(), nil
}
