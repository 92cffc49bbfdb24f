package playlist

import (
	"context"

	"github.com/Fubalt/Blindtest-web-app/domain"
)

type PlaylistRepo interface {
	CreatePlaylist(ctx context.Context, ownerId, name string, songs []domain.Song) (domain.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (domain.Playlist, error)
	ListPlaylistsByOwner(ctx context.Context, ownerId string) ([]domain.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
}
