package domain

import apperrors "github.com/listen-stream/catalog/pkg/errors"

// Entity kinds used in NotFound / AlreadyExists details.
const (
	KindAlbum     = "album"
	KindSong      = "song"
	KindUser      = "user"
	KindPlaylist  = "playlist"
	KindFavourite = "favourite"
)

var (
	// Validation errors
	ErrInvalidSongName     = apperrors.Invalid("song name cannot be empty")
	ErrInvalidDuration     = apperrors.Invalid("song duration must be positive")
	ErrInvalidPlayCount    = apperrors.Invalid("song play count cannot be negative")
	ErrInvalidVideoLink    = apperrors.Invalid("only multimedia songs carry a video link")
	ErrInvalidAlbumTitle   = apperrors.Invalid("album title cannot be empty")
	ErrInvalidUserName     = apperrors.Invalid("user name cannot be empty")
	ErrInvalidPlaylistName = apperrors.Invalid("playlist name cannot be empty")
	ErrInvalidVisibility   = apperrors.Invalid("playlist visibility must be public or private")
	ErrInvalidFollowers    = apperrors.Invalid("follower count cannot be negative")
	ErrInvalidCurrent      = apperrors.Invalid("current song must be a member of the track list")
)

func notFound(kind, key string) error {
	return apperrors.NotFound(kind, key)
}

func alreadyExists(kind, key string) error {
	return apperrors.AlreadyExists(kind, key)
}
