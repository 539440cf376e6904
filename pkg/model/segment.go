package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SegmentKind identifies what a segment carries.
type SegmentKind string

const (
	SegmentKindMusic SegmentKind = "music"
	SegmentKindNews  SegmentKind = "news"
)

// ErrInvalidSegmentKind is returned for a segment tag outside {music, news}.
var ErrInvalidSegmentKind = errors.New("invalid segment kind")

// Segment is a closed sum over MusicSegment and NewsSegment.
// Only types in this package can implement it.
type Segment interface {
	Kind() SegmentKind
	Accept(v SegmentVisitor) error
	segment()
}

// SegmentVisitor must handle every segment kind. Adding a kind adds a method here,
// so every consumer stops compiling until it handles the new case.
type SegmentVisitor interface {
	VisitMusic(s *MusicSegment) error
	VisitNews(s *NewsSegment) error
}

// Track identifies one playable music item.
type Track struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	ArtistNames []string `json:"artistNames"`
}

// NewTrack builds a Track and guarantees a non-nil artist list.
func NewTrack(id, title string, artists []string) Track {
	names := make([]string, len(artists))
	copy(names, artists)
	return Track{ID: id, Title: title, ArtistNames: names}
}

// MusicSegment is an ordered run of tracks.
type MusicSegment struct {
	Tracks []Track
}

// NewMusicSegment copies the tracks into a fresh segment.
func NewMusicSegment(tracks []Track) *MusicSegment {
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return &MusicSegment{Tracks: out}
}

func (s *MusicSegment) Kind() SegmentKind { return SegmentKindMusic }

func (s *MusicSegment) Accept(v SegmentVisitor) error {
	if s == nil {
		return ErrInvalidSegmentKind
	}
	return v.VisitMusic(s)
}

func (*MusicSegment) segment() {}

// TrackIDs returns the identifiers in playback order. Never nil.
func (s *MusicSegment) TrackIDs() []string {
	ids := make([]string, 0, len(s.Tracks))
	for i := range s.Tracks {
		ids = append(ids, s.Tracks[i].ID)
	}
	return ids
}

// NewsSegment is a spoken news summary.
type NewsSegment struct {
	Summary string
}

// NewNewsSegment wraps a summary.
func NewNewsSegment(summary string) *NewsSegment {
	return &NewsSegment{Summary: summary}
}

func (s *NewsSegment) Kind() SegmentKind { return SegmentKindNews }

func (s *NewsSegment) Accept(v SegmentVisitor) error {
	if s == nil {
		return ErrInvalidSegmentKind
	}
	return v.VisitNews(s)
}

func (*NewsSegment) segment() {}

// ValidSegment reports whether seg is a usable, non-nil segment value.
func ValidSegment(seg Segment) error {
	switch s := seg.(type) {
	case *MusicSegment:
		if s == nil {
			return ErrInvalidSegmentKind
		}
	case *NewsSegment:
		if s == nil {
			return ErrInvalidSegmentKind
		}
	default:
		return ErrInvalidSegmentKind
	}
	return nil
}

// wireSegment is the JSON shape shared with the player.
type wireSegment struct {
	SegmentKind SegmentKind     `json:"segmentKind"`
	Content     json.RawMessage `json:"content"`
}

func (s *MusicSegment) MarshalJSON() ([]byte, error) {
	tracks := s.Tracks
	if tracks == nil {
		tracks = []Track{}
	}
	content, err := json.Marshal(tracks)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireSegment{SegmentKind: SegmentKindMusic, Content: content})
}

func (s *NewsSegment) MarshalJSON() ([]byte, error) {
	content, err := json.Marshal(s.Summary)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireSegment{SegmentKind: SegmentKindNews, Content: content})
}

// DecodeSegment parses the wire form. A JSON null (or empty input) yields a nil
// Segment, which means nothing is playing yet.
func DecodeSegment(data []byte) (Segment, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var w wireSegment
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode segment: %w", err)
	}

	switch w.SegmentKind {
	case SegmentKindMusic:
		var tracks []Track
		if len(w.Content) > 0 && string(w.Content) != "null" {
			if err := json.Unmarshal(w.Content, &tracks); err != nil {
				return nil, fmt.Errorf("music segment content: %w", err)
			}
		}
		for i := range tracks {
			tracks[i] = NewTrack(tracks[i].ID, tracks[i].Title, tracks[i].ArtistNames)
		}
		return NewMusicSegment(tracks), nil
	case SegmentKindNews:
		var summary string
		if err := json.Unmarshal(w.Content, &summary); err != nil {
			return nil, fmt.Errorf("news segment content: %w", err)
		}
		return NewNewsSegment(summary), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSegmentKind, w.SegmentKind)
	}
}
