package domain

import (
	"maps"
	"slices"
	"strings"
	"time"
)

type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

type SongSource string

const (
	SourceSpotify SongSource = "spotify"
	SourceYoutube SongSource = "youtube"
)

func (s SongSource) Valid() bool {
	return s == SourceSpotify || s == SourceYoutube
}

type Song struct {
	Id         string     `json:"id"`
	Title      string     `json:"title"`
	Artist     string     `json:"artist"`
	Source     SongSource `json:"source"`
	Cover      string     `json:"cover"`
	PreviewUrl string     `json:"previewUrl,omitempty"`
}

type Settings struct {
	Rounds       int `json:"rounds"`
	TimerSeconds int `json:"timerSeconds"`
}

func (s Settings) Timer() time.Duration {
	return time.Duration(s.TimerSeconds) * time.Second
}

// RoundScore records which guess dimensions were already credited to one
// player for one song index. A credited field stays credited.
type RoundScore struct {
	TitleCredited  bool `json:"titleCredited"`
	ArtistCredited bool `json:"artistCredited"`
}

func (rs RoundScore) Complete() bool {
	return rs.TitleCredited && rs.ArtistCredited
}

type Player struct {
	Id          string             `json:"id"`
	Username    string             `json:"username"`
	Score       float64            `json:"score"`
	RoundScores map[int]RoundScore `json:"roundScores"`
}

type Room struct {
	Id               string             `json:"id"`
	HostId           string             `json:"hostId"`
	HostName         string             `json:"hostName"`
	PlaylistId       string             `json:"playlistId"`
	PlaylistName     string             `json:"playlistName"`
	Songs            []Song             `json:"songs"`
	Status           RoomStatus         `json:"status"`
	CurrentSongIndex int                `json:"currentSongIndex"`
	Players          map[string]*Player `json:"players"`
	Settings         Settings           `json:"settings"`
	RoundStartedAt   time.Time          `json:"roundStartedAt"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// RoundCount is the number of songs that will actually be played.
func (r *Room) RoundCount() int {
	return min(r.Settings.Rounds, len(r.Songs))
}

// IsFinished is derived from the song pointer, never stored.
func (r *Room) IsFinished() bool {
	return r.CurrentSongIndex >= r.RoundCount()
}

func (r *Room) EffectiveStatus() RoomStatus {
	if r.IsFinished() {
		return RoomFinished
	}
	return r.Status
}

// CurrentSong returns the song being guessed, if a round is in progress.
func (r *Room) CurrentSong() (Song, bool) {
	if r.EffectiveStatus() != RoomPlaying {
		return Song{}, false
	}
	return r.Songs[r.CurrentSongIndex], true
}

// Leaderboard lists players by score, highest first, ties broken by username.
func (r *Room) Leaderboard() []Player {
	board := make([]Player, 0, len(r.Players))
	for _, p := range r.Players {
		board = append(board, *p)
	}
	slices.SortFunc(board, func(a, b Player) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Username, b.Username)
	})
	return board
}

func (r *Room) Clone() Room {
	c := *r
	c.Songs = slices.Clone(r.Songs)
	c.Players = make(map[string]*Player, len(r.Players))
	for id, p := range r.Players {
		cp := *p
		cp.RoundScores = maps.Clone(p.RoundScores)
		c.Players[id] = &cp
	}
	return c
}

// RoomListing is the lightweight view served to the room browser.
type RoomListing struct {
	Id           string     `json:"id"`
	HostId       string     `json:"hostId"`
	HostName     string     `json:"hostName"`
	PlaylistName string     `json:"playlistName"`
	Status       RoomStatus `json:"status"`
	PlayersCount int        `json:"playersCount"`
	Settings     Settings   `json:"settings"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (r *Room) Listing() RoomListing {
	return RoomListing{
		Id:           r.Id,
		HostId:       r.HostId,
		HostName:     r.HostName,
		PlaylistName: r.PlaylistName,
		Status:       r.EffectiveStatus(),
		PlayersCount: len(r.Players),
		Settings:     r.Settings,
		CreatedAt:    r.CreatedAt,
	}
}
