package game

import (
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
)

type Action string

const (
	ActionJoin    Action = "join"
	ActionStart   Action = "start"
	ActionAdvance Action = "advance"
	ActionGuess   Action = "guess"
)

// ParseAction accepts "next_song" as an older spelling of "advance".
func ParseAction(s string) (Action, error) {
	switch s {
	case string(ActionJoin), string(ActionStart), string(ActionAdvance), string(ActionGuess):
		return Action(s), nil
	case "next_song":
		return ActionAdvance, nil
	}
	return "", ErrUnknownAction
}

type IgnoreReason string

const (
	IgnoredNotAPlayer    IgnoreReason = "not-a-player"
	IgnoredNotPlaying    IgnoreReason = "not-playing"
	IgnoredGameFinished  IgnoreReason = "game-finished"
	IgnoredRoundComplete IgnoreReason = "round-complete"
	IgnoredTimerExpired  IgnoreReason = "timer-expired"
)

// GuessResult is returned to the guesser right away, independently of the
// room snapshot other players poll.
type GuessResult struct {
	Ignored    bool         `json:"ignored"`
	Reason     IgnoreReason `json:"reason,omitempty"`
	Feedback   Verdict      `json:"feedback"`
	Points     float64      `json:"points"`
	TotalScore float64      `json:"totalScore"`
}

func ignored(reason IgnoreReason, total float64) GuessResult {
	return GuessResult{Ignored: true, Reason: reason, TotalScore: total}
}

// join adds user to the roster. It reports false when the user already plays.
func join(r *domain.Room, user domain.User) bool {
	if _, ok := r.Players[user.Id]; ok {
		return false
	}
	if r.Players == nil {
		r.Players = make(map[string]*domain.Player)
	}
	r.Players[user.Id] = &domain.Player{
		Id:          user.Id,
		Username:    user.Username,
		RoundScores: make(map[int]domain.RoundScore),
	}
	return true
}

func start(r *domain.Room, now time.Time) bool {
	if r.Status == domain.RoomPlaying {
		return false
	}
	r.Status = domain.RoomPlaying
	r.RoundStartedAt = now
	return true
}

// advance moves to the next song. Once the game is finished the pointer
// stays where it is.
func advance(r *domain.Room, now time.Time) bool {
	if r.IsFinished() {
		return false
	}
	r.CurrentSongIndex++
	r.RoundStartedAt = now
	return true
}

func guess(r *domain.Room, callerId, text string, elapsed time.Duration) GuessResult {
	p, ok := r.Players[callerId]
	if !ok {
		return ignored(IgnoredNotAPlayer, 0)
	}

	switch {
	case r.IsFinished():
		return ignored(IgnoredGameFinished, p.Score)
	case r.Status != domain.RoomPlaying:
		return ignored(IgnoredNotPlaying, p.Score)
	case elapsed > r.Settings.Timer():
		return ignored(IgnoredTimerExpired, p.Score)
	}

	idx := r.CurrentSongIndex
	credited := roundScore(p, idx)
	if credited.Complete() {
		return ignored(IgnoredRoundComplete, p.Score)
	}

	v := EvaluateGuess(text, r.Songs[idx], credited, elapsed)
	commitRoundScore(p, idx, v.Credited)
	p.Score += v.PointsAwarded

	return GuessResult{Feedback: v, Points: v.PointsAwarded, TotalScore: p.Score}
}
