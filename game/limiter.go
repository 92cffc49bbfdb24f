package game

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// guessLimiter throttles guesses per (room, caller) pair.
type guessLimiter struct {
	locker  sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	// a sweep runs once the map holds sweepAt entries
	sweepAt  int
	minSweep int
}

func NewGuessLimiter(perSecond float64, burst int) *guessLimiter {
	return &guessLimiter{
		entries:  make(map[string]*limiterEntry),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
		sweepAt:  4096,
		minSweep: 4096,
	}
}

func (gl *guessLimiter) Allow(roomId, callerId string) bool {
	key := roomId + ":" + callerId
	now := gl.now()

	gl.locker.Lock()
	defer gl.locker.Unlock()

	if len(gl.entries) >= gl.sweepAt {
		gl.sweep(now)
	}

	e, ok := gl.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(gl.limit, gl.burst)}
		gl.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (gl *guessLimiter) sweep(now time.Time) {
	for k, e := range gl.entries {
		if now.Sub(e.lastSeen) > gl.idleTTL {
			delete(gl.entries, k)
		}
	}
	// rescan once the surviving set has doubled
	gl.sweepAt = max(gl.minSweep, 2*len(gl.entries))
}
