// Package llm is the text generation boundary: news summaries and
// transition scripts both go through a Provider.
package llm

import "context"

// Profile names select model and temperature settings per use.
const (
	ProfileNewsSummary = "news_summary"
	ProfileTransition  = "transition"
)

type Provider interface {
	// GenerateText runs prompt with the settings of profile.
	GenerateText(ctx context.Context, profile, prompt string) (string, error)
	// HealthCheck fails when the provider is unconfigured or unreachable.
	HealthCheck(ctx context.Context) error
	HasProfile(name string) bool
}
