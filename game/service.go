package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/Fubalt/Blindtest-web-app/auth"
	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/rs/zerolog/log"
)

const (
	MaxRounds       = 100
	MaxTimerSeconds = 600
)

type Options struct {
	// ServerTiming ignores the elapsed time reported by clients and measures
	// it from the round start recorded on start/advance.
	ServerTiming    bool
	DefaultSettings domain.Settings
	GuessLimiter    *guessLimiter
}

type service struct {
	rooms     RoomStore
	playlists PlaylistGetter
	users     UserGetter
	idGen     UniqueIdGenerator
	opts      Options
	now       func() time.Time
	intN      func(n int) int
}

func NewService(rooms RoomStore, playlists PlaylistGetter, users UserGetter, idGen UniqueIdGenerator, opts Options) *service {
	if opts.DefaultSettings.Rounds == 0 {
		opts.DefaultSettings.Rounds = 10
	}
	if opts.DefaultSettings.TimerSeconds == 0 {
		opts.DefaultSettings.TimerSeconds = 30
	}
	return &service{
		rooms:     rooms,
		playlists: playlists,
		users:     users,
		idGen:     idGen,
		opts:      opts,
		now:       time.Now,
		intN:      rand.IntN,
	}
}

func (s *service) resolveSettings(in domain.Settings) (domain.Settings, error) {
	out := in
	if out.Rounds == 0 {
		out.Rounds = s.opts.DefaultSettings.Rounds
	}
	if out.TimerSeconds == 0 {
		out.TimerSeconds = s.opts.DefaultSettings.TimerSeconds
	}
	if out.Rounds < 1 || out.Rounds > MaxRounds {
		return domain.Settings{}, fmt.Errorf("%w: rounds must be between 1 and %d", ErrBadSettings, MaxRounds)
	}
	if out.TimerSeconds < 1 || out.TimerSeconds > MaxTimerSeconds {
		return domain.Settings{}, fmt.Errorf("%w: timerSeconds must be between 1 and %d", ErrBadSettings, MaxTimerSeconds)
	}
	return out, nil
}

// shuffle is a Fisher-Yates pass over songs.
func (s *service) shuffle(songs []domain.Song) {
	for i := len(songs) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		songs[i], songs[j] = songs[j], songs[i]
	}
}

// CreateRoom snapshots and shuffles the playlist once. Later edits of the
// playlist never reach the room.
func (s *service) CreateRoom(ctx context.Context, hostId, playlistId string, settings domain.Settings) (string, error) {
	if strings.TrimSpace(hostId) == "" || strings.TrimSpace(playlistId) == "" {
		return "", ErrMissingFields
	}

	settings, err := s.resolveSettings(settings)
	if err != nil {
		return "", err
	}

	host, err := s.users.GetUserById(ctx, hostId)
	if err != nil {
		return "", err
	}

	playlist, err := s.playlists.GetPlaylist(ctx, playlistId)
	if err != nil {
		return "", err
	}

	songs := slices.Clone(playlist.Songs)
	s.shuffle(songs)

	room := domain.Room{
		Id:           s.idGen.Generate(),
		HostId:       host.Id,
		HostName:     host.Username,
		PlaylistId:   playlist.Id,
		PlaylistName: playlist.Name,
		Songs:        songs,
		Status:       domain.RoomWaiting,
		Players:      map[string]*domain.Player{},
		Settings:     settings,
		CreatedAt:    s.now(),
	}

	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return "", err
	}

	roomsCreated.Inc()
	log.Info().Str("room", room.Id).Str("host", host.Id).Int("songs", len(songs)).Msg("room created")
	return room.Id, nil
}

func (s *service) GetRoom(ctx context.Context, roomId string) (domain.Room, error) {
	return s.rooms.GetRoom(ctx, roomId)
}

// ListRooms returns rooms that are not finished, newest first.
func (s *service) ListRooms(ctx context.Context) ([]domain.RoomListing, error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]domain.RoomListing, 0, len(rooms))
	for i := range rooms {
		if rooms[i].IsFinished() {
			continue
		}
		listings = append(listings, rooms[i].Listing())
	}
	slices.SortStableFunc(listings, func(a, b domain.RoomListing) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return listings, nil
}

func (s *service) DeleteRoom(ctx context.Context, roomId, callerId string) error {
	room, err := s.rooms.GetRoom(ctx, roomId)
	if err != nil {
		return err
	}
	if err := auth.AssertOwner(room.HostId, callerId); err != nil {
		return err
	}
	if err := s.rooms.DeleteRoom(ctx, roomId); err != nil {
		return err
	}
	log.Info().Str("room", roomId).Str("caller", callerId).Msg("room deleted")
	return nil
}

type GuessPayload struct {
	Guess string
	// ElapsedMs is the caller's own measure of the time since the round
	// started. It is required unless the server keeps time itself.
	ElapsedMs *int64
}

// MaxElapsed caps caller supplied timings. It is longer than any allowed
// timer, so a capped guess is always late.
const MaxElapsed = 24 * time.Hour

func (s *service) guessElapsed(p GuessPayload) (time.Duration, error) {
	if s.opts.ServerTiming {
		return 0, nil
	}
	if p.ElapsedMs == nil || *p.ElapsedMs < 0 {
		return 0, ErrBadElapsed
	}
	if *p.ElapsedMs > MaxElapsed.Milliseconds() {
		return MaxElapsed, nil
	}
	return time.Duration(*p.ElapsedMs) * time.Millisecond, nil
}

// Apply dispatches one action. Only guess produces a result.
func (s *service) Apply(ctx context.Context, roomId string, action Action, callerId string, payload GuessPayload) (*GuessResult, error) {
	var err error
	switch action {
	case ActionJoin:
		err = s.Join(ctx, roomId, callerId)
	case ActionStart:
		err = s.Start(ctx, roomId, callerId)
	case ActionAdvance:
		err = s.Advance(ctx, roomId, callerId)
	case ActionGuess:
		elapsed, gerr := s.guessElapsed(payload)
		if gerr != nil {
			countAction(action, gerr)
			return nil, gerr
		}
		res, gerr := s.Guess(ctx, roomId, callerId, payload.Guess, elapsed)
		countAction(action, gerr)
		if gerr != nil {
			return nil, gerr
		}
		return &res, nil
	default:
		return nil, ErrUnknownAction
	}
	countAction(action, err)
	return nil, err
}

func (s *service) Join(ctx context.Context, roomId, callerId string) error {
	if strings.TrimSpace(callerId) == "" {
		return ErrMissingFields
	}
	user, err := s.users.GetUserById(ctx, callerId)
	if err != nil {
		return err
	}

	added := false
	_, err = s.rooms.UpdateRoom(ctx, roomId, func(room *domain.Room) error {
		added = join(room, user)
		return nil
	})
	if err != nil {
		return err
	}
	if added {
		log.Debug().Str("room", roomId).Str("caller", callerId).Msg("player joined")
	}
	return nil
}

func (s *service) Start(ctx context.Context, roomId, callerId string) error {
	_, err := s.rooms.UpdateRoom(ctx, roomId, func(room *domain.Room) error {
		if err := auth.AssertOwner(room.HostId, callerId); err != nil {
			return err
		}
		start(room, s.now())
		return nil
	})
	if err == nil {
		log.Debug().Str("room", roomId).Msg("game started")
	}
	return err
}

func (s *service) Advance(ctx context.Context, roomId, callerId string) error {
	room, err := s.rooms.UpdateRoom(ctx, roomId, func(room *domain.Room) error {
		if err := auth.AssertOwner(room.HostId, callerId); err != nil {
			return err
		}
		advance(room, s.now())
		return nil
	})
	if err == nil {
		log.Debug().Str("room", roomId).Int("index", room.CurrentSongIndex).Bool("finished", room.IsFinished()).Msg("song advanced")
	}
	return err
}

// Guess scores a guess for the caller against the current song. Guesses that
// cannot score are not errors: they come back with Ignored set and the room
// is left untouched.
func (s *service) Guess(ctx context.Context, roomId, callerId, text string, elapsed time.Duration) (GuessResult, error) {
	if s.opts.GuessLimiter != nil && !s.opts.GuessLimiter.Allow(roomId, callerId) {
		return GuessResult{}, ErrTooManyGuesses
	}

	var res GuessResult
	_, err := s.rooms.UpdateRoom(ctx, roomId, func(room *domain.Room) error {
		if s.opts.ServerTiming {
			elapsed = s.now().Sub(room.RoundStartedAt)
		}
		res = guess(room, callerId, text, elapsed)
		if res.Ignored {
			return errGuessIgnored
		}
		return nil
	})
	if errors.Is(err, errGuessIgnored) {
		log.Debug().Str("room", roomId).Str("caller", callerId).Str("reason", string(res.Reason)).Msg("guess ignored")
		guessesIgnored.WithLabelValues(string(res.Reason)).Inc()
		return res, nil
	}
	if err != nil {
		return GuessResult{}, err
	}

	pointsAwarded.Observe(res.Points)
	return res, nil
}

// errGuessIgnored aborts the store update so an ignored guess writes nothing.
var errGuessIgnored = errors.New("guess-ignored")
