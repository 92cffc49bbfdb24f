package game

import (
	"strings"
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
)

const (
	FieldPoints      = 1.0
	SpeedBonusPoints = 0.5
	SpeedBonusWindow = 5 * time.Second
)

type Verdict struct {
	TitleMatched      bool              `json:"title"`
	ArtistMatched     bool              `json:"artist"`
	SpeedBonusApplied bool              `json:"speed"`
	PointsAwarded     float64           `json:"-"`
	Credited          domain.RoundScore `json:"-"`
}

// matches accepts the guess when either normalized string contains the other.
// Empty strings never match.
func matches(target, guess string) bool {
	if target == "" || guess == "" {
		return false
	}
	return strings.Contains(guess, target) || strings.Contains(target, guess)
}

// EvaluateGuess scores one guess against the current song. Fields already
// credited are skipped, so the same answer never pays twice in a round.
func EvaluateGuess(guess string, song domain.Song, credited domain.RoundScore, elapsed time.Duration) Verdict {
	v := Verdict{Credited: credited}

	g := Normalize(guess)
	fast := elapsed < SpeedBonusWindow

	award := func() float64 {
		if fast {
			v.SpeedBonusApplied = true
			return FieldPoints + SpeedBonusPoints
		}
		return FieldPoints
	}

	if !credited.TitleCredited && matches(Normalize(song.Title), g) {
		v.TitleMatched = true
		v.Credited.TitleCredited = true
		v.PointsAwarded += award()
	}

	if !credited.ArtistCredited && matches(Normalize(song.Artist), g) {
		v.ArtistMatched = true
		v.Credited.ArtistCredited = true
		v.PointsAwarded += award()
	}

	return v
}
