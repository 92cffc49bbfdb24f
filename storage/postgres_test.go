package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/Fubalt/Blindtest-web-app/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRoom(t *testing.T, repo *storage.PostgresRepo, username string) domain.Room {
	t.Helper()
	ctx := context.Background()
	host, err := repo.GetOrCreateUser(ctx, username)
	require.NoError(t, err)
	p, err := repo.CreatePlaylist(ctx, host.Id, "hits", []domain.Song{
		{Id: "s1", Title: "Hello", Artist: "Artist X", Source: domain.SourceSpotify},
		{Id: "s2", Title: "Bye", Artist: "Artist Y", Source: domain.SourceYoutube},
	})
	require.NoError(t, err)

	room := newRoom(host.Id)
	room.HostName = host.Username
	room.PlaylistId = p.Id
	room.Songs = p.Songs
	require.NoError(t, repo.CreateRoom(ctx, room))
	return room
}

func TestPostgresRepoUsers(t *testing.T) {
	repo := postgresRepo(t)
	ctx := context.Background()

	t.Run("GetOrCreateUser", func(t *testing.T) {
		first, err := repo.GetOrCreateUser(ctx, "pg-naruto")
		require.NoError(t, err)
		assert.NotEmpty(t, first.Id)

		again, err := repo.GetOrCreateUser(ctx, "pg-naruto")
		require.NoError(t, err)
		assert.Equal(t, first.Id, again.Id)
	})

	t.Run("GetUserById_NotFound", func(t *testing.T) {
		_, err := repo.GetUserById(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = repo.GetUserById(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgresRepoPlaylists(t *testing.T) {
	repo := postgresRepo(t)
	ctx := context.Background()
	owner, err := repo.GetOrCreateUser(ctx, "pg-sasuke")
	require.NoError(t, err)

	songs := []domain.Song{{Id: "1", Title: "A", Artist: "B", Source: domain.SourceSpotify, Cover: "http://img"}}
	p, err := repo.CreatePlaylist(ctx, owner.Id, "mix", songs)
	require.NoError(t, err)

	got, err := repo.GetPlaylist(ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, songs, got.Songs)
	assert.Equal(t, owner.Id, got.OwnerId)

	list, err := repo.ListPlaylistsByOwner(ctx, owner.Id)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.CreatePlaylist(ctx, uuid.NewString(), "orphan", songs)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, repo.DeletePlaylist(ctx, p.Id))
	_, err = repo.GetPlaylist(ctx, p.Id)
	assert.ErrorIs(t, err, domain.ErrPlaylistNotFound)
	assert.ErrorIs(t, repo.DeletePlaylist(ctx, p.Id), domain.ErrPlaylistNotFound)
}

func TestPostgresRepoRooms(t *testing.T) {
	repo := postgresRepo(t)
	ctx := context.Background()
	room := seedRoom(t, repo, "pg-host")

	t.Run("GetRoom", func(t *testing.T) {
		got, err := repo.GetRoom(ctx, room.Id)
		require.NoError(t, err)
		assert.Equal(t, room.Songs, got.Songs)
		assert.Equal(t, room.Settings, got.Settings)
		assert.Equal(t, domain.RoomWaiting, got.Status)
		assert.True(t, got.RoundStartedAt.IsZero())
		assert.NotNil(t, got.Players)
	})

	t.Run("UpdateRoom", func(t *testing.T) {
		started := time.Now().UTC().Truncate(time.Microsecond)
		_, err := repo.UpdateRoom(ctx, room.Id, func(r *domain.Room) error {
			r.Status = domain.RoomPlaying
			r.RoundStartedAt = started
			r.Players["p1"] = &domain.Player{
				Id:          "p1",
				Username:    "naruto",
				Score:       1.5,
				RoundScores: map[int]domain.RoundScore{0: {TitleCredited: true}},
			}
			return nil
		})
		require.NoError(t, err)

		got, err := repo.GetRoom(ctx, room.Id)
		require.NoError(t, err)
		assert.Equal(t, domain.RoomPlaying, got.Status)
		assert.True(t, started.Equal(got.RoundStartedAt))
		require.Contains(t, got.Players, "p1")
		assert.Equal(t, 1.5, got.Players["p1"].Score)
		assert.True(t, got.Players["p1"].RoundScores[0].TitleCredited)
	})

	t.Run("UpdateRoom_ApplyError", func(t *testing.T) {
		_, err := repo.UpdateRoom(ctx, room.Id, func(r *domain.Room) error {
			r.CurrentSongIndex = 1
			return domain.ErrUnauthorized
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		got, err := repo.GetRoom(ctx, room.Id)
		require.NoError(t, err)
		assert.Equal(t, 0, got.CurrentSongIndex)
	})

	t.Run("UpdateRoom_Concurrent", func(t *testing.T) {
		const writers = 16
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
		assert.Equal(t, 1.5+writers, got.Players["p1"].Score)
	})

	t.Run("ListRooms_SkipsFinished", func(t *testing.T) {
		finished := seedRoom(t, repo, "pg-host-2")
		_, err := repo.UpdateRoom(ctx, finished.Id, func(r *domain.Room) error {
			r.CurrentSongIndex = 2
			return nil
		})
		require.NoError(t, err)

		rooms, err := repo.ListRooms(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(rooms))
		for _, r := range rooms {
			ids = append(ids, r.Id)
		}
		assert.Contains(t, ids, room.Id)
		assert.NotContains(t, ids, finished.Id)
	})

	t.Run("DeleteRoom", func(t *testing.T) {
		require.NoError(t, repo.DeleteRoom(ctx, room.Id))
		_, err := repo.GetRoom(ctx, room.Id)
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
		assert.ErrorIs(t, repo.DeleteRoom(ctx, room.Id), domain.ErrRoomNotFound)
		_, err = repo.UpdateRoom(ctx, "not-a-uuid", func(r *domain.Room) error { return nil })
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})
}
