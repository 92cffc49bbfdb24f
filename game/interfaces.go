package game

import (
	"context"

	"github.com/Fubalt/Blindtest-web-app/domain"
)

// RoomStore persists rooms. UpdateRoom must run apply inside a per-room
// critical section: no other UpdateRoom for the same id may interleave
// between its load and its save. When apply returns an error nothing is
// saved and the error is returned as is.
type RoomStore interface {
	CreateRoom(ctx context.Context, room domain.Room) error
	GetRoom(ctx context.Context, id string) (domain.Room, error)
	UpdateRoom(ctx context.Context, id string, apply func(room *domain.Room) error) (domain.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]domain.Room, error)
}

type PlaylistGetter interface {
	GetPlaylist(ctx context.Context, id string) (domain.Playlist, error)
}

type UserGetter interface {
	GetUserById(ctx context.Context, id string) (domain.User, error)
}

type UniqueIdGenerator interface {
	Generate() string
}
