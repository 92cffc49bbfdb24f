package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/Fubalt/Blindtest-web-app/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(hostId string) domain.Room {
	return domain.Room{
		Id:           uuid.NewString(),
		HostId:       hostId,
		HostName:     "host",
		PlaylistName: "hits",
		Songs: []domain.Song{
			{Id: "s1", Title: "Hello", Artist: "Artist X", Source: domain.SourceSpotify},
			{Id: "s2", Title: "Bye", Artist: "Artist Y", Source: domain.SourceYoutube},
		},
		Status:    domain.RoomWaiting,
		Players:   map[string]*domain.Player{},
		Settings:  domain.Settings{Rounds: 2, TimerSeconds: 30},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestMemoryRepoUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := storage.NewMemoryRepo()

	first, err := repo.GetOrCreateUser(ctx, "naruto")
	require.NoError(t, err)
	again, err := repo.GetOrCreateUser(ctx, "naruto")
	require.NoError(t, err)
	assert.Equal(t, first.Id, again.Id, "same username maps to the same user")

	got, err := repo.GetUserById(ctx, first.Id)
	require.NoError(t, err)
	assert.Equal(t, "naruto", got.Username)

	_, err = repo.GetUserById(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMemoryRepoPlaylists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := storage.NewMemoryRepo()
	owner, _ := repo.GetOrCreateUser(ctx, "sasuke")

	songs := []domain.Song{{Id: "1", Title: "A", Artist: "B"}}
	p, err := repo.CreatePlaylist(ctx, owner.Id, "mix", songs)
	require.NoError(t, err)

	songs[0].Title = "mutated"
	got, err := repo.GetPlaylist(ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Songs[0].Title, "stored songs are a copy")

	list, err := repo.ListPlaylistsByOwner(ctx, owner.Id)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.CreatePlaylist(ctx, "ghost", "mix", songs)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, repo.DeletePlaylist(ctx, p.Id))
	_, err = repo.GetPlaylist(ctx, p.Id)
	assert.ErrorIs(t, err, domain.ErrPlaylistNotFound)
	assert.ErrorIs(t, repo.DeletePlaylist(ctx, p.Id), domain.ErrPlaylistNotFound)
}

func TestMemoryRepoRooms(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := storage.NewMemoryRepo()
	room := newRoom("host-1")
	require.NoError(t, repo.CreateRoom(ctx, room))

	t.Run("read after write", func(t *testing.T) {
		_, err := repo.UpdateRoom(ctx, room.Id, func(r *domain.Room) error {
			r.Status = domain.RoomPlaying
			r.CurrentSongIndex = 1
			return nil
		})
		require.NoError(t, err)

		got, err := repo.GetRoom(ctx, room.Id)
		require.NoError(t, err)
		assert.Equal(t, domain.RoomPlaying, got.Status)
		assert.Equal(t, 1, got.CurrentSongIndex)
	})

	t.Run("failed apply saves nothing", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := repo.UpdateRoom(ctx, room.Id, func(r *domain.Room) error {
			r.CurrentSongIndex = 99
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.GetRoom(ctx, room.Id)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentSongIndex)
	})

	t.Run("returned rooms are copies", func(t *testing.T) {
		got, err := repo.GetRoom(ctx, room.Id)
		require.NoError(t, err)
		got.Players["intruder"] = &domain.Player{Id: "intruder"}

		again, err := repo.GetRoom(ctx, room.Id)
		require.NoError(t, err)
		assert.NotContains(t, again.Players, "intruder")
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := repo.GetRoom(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
		_, err = repo.UpdateRoom(ctx, "nope", func(r *domain.Room) error { return nil })
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
		assert.ErrorIs(t, repo.DeleteRoom(ctx, "nope"), domain.ErrRoomNotFound)
	})
}

func TestMemoryRepoListRooms(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := storage.NewMemoryRepo()

	older := newRoom("h")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newRoom("h")
	require.NoError(t, repo.CreateRoom(ctx, older))
	require.NoError(t, repo.CreateRoom(ctx, newer))

	rooms, err := repo.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, newer.Id, rooms[0].Id)

	require.NoError(t, repo.DeleteRoom(ctx, newer.Id))
	rooms, err = repo.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestMemoryRepoConcurrentUpdates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := storage.NewMemoryRepo()
	room := newRoom("h")
	room.Players["p1"] = &domain.Player{Id: "p1"}
	require.NoError(t, repo.CreateRoom(ctx, room))

	const writers = 64
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateRoom(ctx, room.Id, func(r *domain.Room) error {
				r.Players["p1"].Score += 1
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetRoom(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, float64(writers), got.Players["p1"].Score, "no increment may be lost")
}

func TestMemoryRepoCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := storage.NewMemoryRepo()

	_, err := repo.GetRoom(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
