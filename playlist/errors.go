package playlist

import (
	"fmt"

	"github.com/Fubalt/Blindtest-web-app/domain"
)

var (
	ErrMissingName   = fmt.Errorf("%w: missing-playlist-name", domain.ErrInvalidInput)
	ErrNameTooLong   = fmt.Errorf("%w: playlist-name-too-long", domain.ErrInvalidInput)
	ErrNoSongs       = fmt.Errorf("%w: empty-playlist", domain.ErrInvalidInput)
	ErrTooManySongs  = fmt.Errorf("%w: too-many-songs", domain.ErrInvalidInput)
	ErrInvalidSong   = fmt.Errorf("%w: invalid-song", domain.ErrInvalidInput)
	ErrUnknownSource = fmt.Errorf("%w: unknown-song-source", domain.ErrInvalidInput)
)
