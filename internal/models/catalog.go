package models

import "time"

// Image size variants generated for every uploaded cover.
const (
	ImageSizeSmall  = "small"
	ImageSizeNormal = "normal"
)

// Album types. A single may hold at most one track.
const (
	AlbumTypeAlbum  = "album"
	AlbumTypeSingle = "single"
)

// Genre categorizes albums. One genre per album.
type Genre struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// Image is one size variant of an uploaded cover, attached to an album
// or playlist. Each parent carries exactly one small and one normal
// variant; that pairing is maintained by the services, not a constraint.
type Image struct {
	ID   int64  `json:"-" db:"id"`
	URL  string `json:"url" db:"url"`
	Size string `json:"size" db:"size"`
}

// Album is a released collection of tracks by a single artist.
// DurationMS is denormalized: the services keep it equal to the sum of
// the member tracks' durations on every track mutation.
type Album struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	AlbumType   string    `json:"album_type" db:"album_type"`
	ReleaseDate time.Time `json:"release_date" db:"release_date"`
	DurationMS  int64     `json:"duration_ms" db:"duration_ms"`
	Artist      *User     `json:"artist,omitempty"`
	Genre       *Genre    `json:"genre,omitempty"`
	Images      []Image   `json:"images"`

	// Tracks is eagerly loaded by the store but never serialized raw;
	// responses attach a paginated track page instead.
	Tracks []Track `json:"-"`
}

// Track is a single piece of audio belonging to an album. DurationMS is
// derived server-side from the decoded audio file, never trusted from
// the client.
type Track struct {
	ID         int64   `json:"id" db:"id"`
	Title      string  `json:"title" db:"title"`
	File       string  `json:"file" db:"file"`
	IsPlayable bool    `json:"is_playable" db:"is_playable"`
	Explicit   bool    `json:"explicit" db:"explicit"`
	Text       *string `json:"text" db:"text"`
	DurationMS int64   `json:"duration_ms" db:"duration_ms"`
	Number     int     `json:"number" db:"number"`
	Artist     *User   `json:"artist,omitempty"`
	Album      *Album  `json:"album,omitempty"`
}

// Playlist is a user-curated list of tracks. Artists is a denormalized
// set covering the artist of every member track; DurationMS is the
// denormalized sum of member durations.
type Playlist struct {
	ID         int64   `json:"id" db:"id"`
	Title      string  `json:"title" db:"title"`
	DurationMS int64   `json:"duration_ms" db:"duration_ms"`
	Author     *User   `json:"author,omitempty"`
	Artists    []User  `json:"artists"`
	Images     []Image `json:"images"`

	// Tracks is eagerly loaded in insertion order; responses attach a
	// paginated page instead of the raw slice.
	Tracks []Track `json:"-"`
}
