package playlist_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/Fubalt/Blindtest-web-app/playlist"
	"github.com/Fubalt/Blindtest-web-app/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlaylist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := storage.NewMemoryRepo()
	owner, err := repo.GetOrCreateUser(ctx, "naruto")
	require.NoError(t, err)
	service := playlist.NewService(repo)

	song := domain.Song{Title: " Hello ", Artist: "Artist X"}

	testCases := []struct {
		description   string
		owner         string
		name          string
		songs         []domain.Song
		expectedError error
	}{
		{"valid", owner.Id, "hits", []domain.Song{song}, nil},
		{"blank name", owner.Id, "   ", []domain.Song{song}, playlist.ErrMissingName},
		{"name too long", owner.Id, strings.Repeat("n", playlist.MaxNameLength+1), []domain.Song{song}, playlist.ErrNameTooLong},
		{"no songs", owner.Id, "hits", nil, playlist.ErrNoSongs},
		{"song without artist", owner.Id, "hits", []domain.Song{{Title: "Hello"}}, playlist.ErrInvalidSong},
		{"unknown source", owner.Id, "hits", []domain.Song{{Title: "a", Artist: "b", Source: "deezer"}}, playlist.ErrUnknownSource},
		{"unknown owner", "ghost", "hits", []domain.Song{song}, domain.ErrUserNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			p, err := service.Create(ctx, tc.owner, tc.name, tc.songs)
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Len(t, p.Songs, 1)
			assert.Equal(t, "Hello", p.Songs[0].Title)
			assert.Equal(t, domain.SourceSpotify, p.Songs[0].Source)
			assert.NotEmpty(t, p.Songs[0].Id)
		})
	}

	t.Run("input errors are invalid input", func(t *testing.T) {
		_, err := service.Create(ctx, owner.Id, "", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestDeletePlaylist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := storage.NewMemoryRepo()
	owner, _ := repo.GetOrCreateUser(ctx, "sasuke")
	other, _ := repo.GetOrCreateUser(ctx, "sakura")
	service := playlist.NewService(repo)

	p, err := service.Create(ctx, owner.Id, "mix", []domain.Song{{Title: "a", Artist: "b"}})
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, p.Id, other.Id), domain.ErrUnauthorized)
	_, err = service.Get(ctx, p.Id)
	assert.NoError(t, err, "a refused delete leaves the playlist in place")

	assert.NoError(t, service.Delete(ctx, p.Id, owner.Id))
	_, err = service.Get(ctx, p.Id)
	assert.ErrorIs(t, err, domain.ErrPlaylistNotFound)

	assert.ErrorIs(t, service.Delete(ctx, p.Id, owner.Id), domain.ErrPlaylistNotFound)
}

func TestListPlaylists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := storage.NewMemoryRepo()
	owner, _ := repo.GetOrCreateUser(ctx, "kakashi")
	other, _ := repo.GetOrCreateUser(ctx, "guy")
	service := playlist.NewService(repo)

	songs := []domain.Song{{Title: "a", Artist: "b"}}
	_, err := service.Create(ctx, owner.Id, "one", songs)
	require.NoError(t, err)
	_, err = service.Create(ctx, other.Id, "two", songs)
	require.NoError(t, err)

	mine, err := service.List(ctx, owner.Id)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "one", mine[0].Name)
}
