// Package openai talks to any server that speaks the OpenAI chat completions API
// (OpenAI itself, Groq, OpenRouter, a local llama.cpp, ...).
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"nueslify/pkg/config"
	"nueslify/pkg/llm"
	"nueslify/pkg/request"
)

const (
	providerName       = "openai"
	DefaultBaseURL     = "https://api.openai.com/v1"
	defaultTemperature = 0.7
)

var ErrMissingKey = errors.New("api key is missing")

// Client is an llm.Provider. Calls go through the shared request.Client so
// they are queued, retried and counted with every other upstream call.
type Client struct {
	rc       *request.Client
	history  *llm.History
	apiKey   string
	baseURL  string
	model    string
	profiles map[string]string

	tempBase, tempJitter float32
}

type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type response struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type modelInfo struct {
	ID string `json:"id"`
}

type modelList struct {
	Data []modelInfo `json:"data"`
}

func NewClient(cfg config.LLMConfig, rc *request.Client, history *llm.History) (*Client, error) {
	if rc == nil {
		return nil, errors.New("request client is required")
	}
	return &Client{
		rc:         rc,
		history:    history,
		apiKey:     cfg.Key,
		baseURL:    strings.TrimSuffix(lo.CoalesceOrEmpty(cfg.BaseURL, DefaultBaseURL), "/"),
		model:      cfg.Model,
		profiles:   cfg.Profiles,
		tempBase:   cfg.TemperatureBase,
		tempJitter: cfg.TemperatureJitter,
	}, nil
}

func (c *Client) GenerateText(ctx context.Context, profile, prompt string) (string, error) {
	model, err := c.ResolveModel(profile)
	if err != nil {
		return "", err
	}

	temp := float32(defaultTemperature)
	if profile == llm.ProfileTransition && c.tempBase > 0 {
		temp = llm.SampleTemperature(c.tempBase, c.tempJitter)
	}

	text, err := c.complete(ctx, Request{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: temp,
	})
	c.history.Record(providerName, profile, prompt, text, err)
	return text, err
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingKey
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.rc.PostWithHeaders(ctx, c.baseURL+"/chat/completions", payload, c.headers())
	if err != nil {
		return "", err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode completion: %w", err)
	}
	switch {
	case resp.Error != nil:
		return "", fmt.Errorf("openai api error: %s (%s)", resp.Error.Message, resp.Error.Type)
	case len(resp.Choices) == 0:
		return "", errors.New("completion has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
	}
}

// HealthCheck fails unless every configured model is listed by the endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.apiKey == "" {
		return ErrMissingKey
	}
	url := c.baseURL + "/models"
	body, err := c.rc.GetWithHeaders(ctx, url, c.headers(), "")
	if err != nil {
		return fmt.Errorf("failed to fetch models from %s: %w", url, err)
	}

	var list modelList
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("failed to parse models response: %w", err)
	}

	available := lo.Map(list.Data, func(m modelInfo, _ int) string { return m.ID })
	wanted := lo.Compact(lo.Uniq(append([]string{c.model}, lo.Values(c.profiles)...)))
	if missing, _ := lo.Difference(wanted, available); len(missing) > 0 {
		return fmt.Errorf("configured models %v not found at %s", missing, url)
	}
	return nil
}

func (c *Client) HasProfile(name string) bool {
	return c.profiles[name] != ""
}

// ResolveModel returns the model of profile, or the default model.
func (c *Client) ResolveModel(profile string) (string, error) {
	if m := lo.CoalesceOrEmpty(c.profiles[profile], c.model); m != "" {
		return m, nil
	}
	return "", fmt.Errorf("profile %q not configured", profile)
}
