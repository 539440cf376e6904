package model

// SongRecord is a track as reported by the music provider, before it is
// translated into a Track. ArtistNames may be nil.
type SongRecord struct {
	ID          string
	Name        string
	ArtistNames []string
}

// ToTrack translates the provider record into the domain shape.
func (r SongRecord) ToTrack() Track {
	return NewTrack(r.ID, r.Name, r.ArtistNames)
}
