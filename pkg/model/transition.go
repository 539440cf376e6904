package model

import (
	"time"
)

// TransitionVariant distinguishes a stream opener from a bridge between two segments.
type TransitionVariant string

const (
	TransitionStart  TransitionVariant = "start"
	TransitionBridge TransitionVariant = "bridge"
)

// TransitionArtifact is the generated link between two segments.
// The mixer passes it through without inspecting it.
type TransitionArtifact struct {
	ID        string            `json:"id"`
	Variant   TransitionVariant `json:"variant"`
	From      SegmentKind       `json:"from,omitempty"` // empty for start
	To        SegmentKind       `json:"to"`
	Script    string            `json:"script"`
	AudioPath string            `json:"-"`
	AudioURL  string            `json:"audio_url,omitempty"`
	Format    string            `json:"format,omitempty"` // e.g., "mp3"
	Duration  time.Duration     `json:"duration"`

	GenerationLatency time.Duration `json:"generation_latency"`
	CreatedAt         time.Time     `json:"created_at"`
}
