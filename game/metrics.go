package game

import (
	"errors"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	roomsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "blindtest_rooms_created_total", Help: "Rooms created"},
	)
	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "blindtest_room_actions_total", Help: "Room actions by outcome"},
		[]string{"action", "outcome"},
	)
	guessesIgnored = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "blindtest_guesses_ignored_total", Help: "Guesses that could not score"},
		[]string{"reason"},
	)
	pointsAwarded = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "blindtest_guess_points",
			Help:    "Points awarded per accepted guess",
			Buckets: []float64{0, 1, 1.5, 2, 3},
		},
	)
)

func init() {
	prometheus.MustRegister(roomsCreated, actionsTotal, guessesIgnored, pointsAwarded)
}

func countAction(action Action, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRoomNotFound):
		outcome = "not-found"
	case errors.Is(err, domain.ErrUnauthorized):
		outcome = "unauthorized"
	case errors.Is(err, ErrTooManyGuesses):
		outcome = "rate-limited"
	default:
		outcome = "error"
	}
	actionsTotal.WithLabelValues(string(action), outcome).Inc()
}
