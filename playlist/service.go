package playlist

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Fubalt/Blindtest-web-app/auth"
	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxNameLength = 100
	MaxSongs      = 500
)

type service struct {
	repo PlaylistRepo
}

func NewService(repo PlaylistRepo) *service {
	return &service{repo: repo}
}

// cleanSongs trims every song and fills in missing ids. Title and artist are
// both required since they are what players guess.
func cleanSongs(songs []domain.Song) ([]domain.Song, error) {
	if len(songs) == 0 {
		return nil, ErrNoSongs
	}
	if len(songs) > MaxSongs {
		return nil, ErrTooManySongs
	}

	out := make([]domain.Song, len(songs))
	for i, s := range songs {
		s.Id = strings.TrimSpace(s.Id)
		s.Title = strings.TrimSpace(s.Title)
		s.Artist = strings.TrimSpace(s.Artist)
		if s.Title == "" || s.Artist == "" {
			return nil, fmt.Errorf("%w: song %d needs a title and an artist", ErrInvalidSong, i)
		}
		if s.Source == "" {
			s.Source = domain.SourceSpotify
		}
		if !s.Source.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSource, s.Source)
		}
		if s.Id == "" {
			s.Id = uuid.NewString()
		}
		out[i] = s
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, ownerId, name string, songs []domain.Song) (domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Playlist{}, ErrMissingName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return domain.Playlist{}, ErrNameTooLong
	}

	cleaned, err := cleanSongs(songs)
	if err != nil {
		return domain.Playlist{}, err
	}

	p, err := s.repo.CreatePlaylist(ctx, ownerId, name, cleaned)
	if err != nil {
		return domain.Playlist{}, err
	}
	log.Debug().Str("playlist", p.Id).Str("owner", ownerId).Int("songs", len(cleaned)).Msg("playlist created")
	return p, nil
}

func (s *service) List(ctx context.Context, ownerId string) ([]domain.Playlist, error) {
	return s.repo.ListPlaylistsByOwner(ctx, ownerId)
}

func (s *service) Get(ctx context.Context, id string) (domain.Playlist, error) {
	return s.repo.GetPlaylist(ctx, id)
}

// Delete removes a playlist owned by callerId. Rooms created from it keep
// their own copy of the songs.
func (s *service) Delete(ctx context.Context, id, callerId string) error {
	p, err := s.repo.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.AssertOwner(p.OwnerId, callerId); err != nil {
		return err
	}
	return s.repo.DeletePlaylist(ctx, id)
}
