package model

import (
	"encoding/json"
	"errors"
)

// MixerResult is what the player receives after each mix.
// Exactly one of MusicIDs and News is set.
type MixerResult struct {
	Transition *TransitionArtifact
	MusicIDs   []string
	News       *NewsSegment
}

// NextKind reports which segment kind the result schedules.
func (r *MixerResult) NextKind() SegmentKind {
	if r.News != nil {
		return SegmentKindNews
	}
	return SegmentKindMusic
}

func (r *MixerResult) MarshalJSON() ([]byte, error) {
	if r.News != nil {
		return json.Marshal(struct {
			Transition *TransitionArtifact `json:"transitionSegment"`
			News       *NewsSegment        `json:"newsSegment"`
		}{r.Transition, r.News})
	}
	ids := r.MusicIDs
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(struct {
		Transition *TransitionArtifact `json:"transitionSegment"`
		MusicIDs   []string            `json:"musicIds"`
	}{r.Transition, ids})
}

func (r *MixerResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Transition *TransitionArtifact `json:"transitionSegment"`
		MusicIDs   []string            `json:"musicIds"`
		News       json.RawMessage     `json:"newsSegment"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Transition = raw.Transition
	r.MusicIDs = raw.MusicIDs
	r.News = nil
	if len(raw.News) == 0 || string(raw.News) == "null" {
		return nil
	}
	seg, err := DecodeSegment(raw.News)
	if err != nil {
		return err
	}
	news, ok := seg.(*NewsSegment)
	if !ok {
		return errors.New("newsSegment does not carry a news segment")
	}
	r.News = news
	return nil
}
