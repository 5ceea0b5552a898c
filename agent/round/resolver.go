package round

import (
	"sort"
	"time"
)

const DefaultResumeWindow = 4 * time.Hour

// Resolver decides whether a player's previous round can be resumed.
type Resolver struct {
	Window time.Duration
}

func NewResolver(window time.Duration) Resolver {
	if window <= 0 {
		window = DefaultResumeWindow
	}
	return Resolver{Window: window}
}

// Resolution is the outcome of Resolve. Active is nil when no round is
// eligible. Stale lists the other eligible rounds, newest first.
type Resolution struct {
	Active *Round
	Stale  []Round
}

// Eligible reports whether rnd is in progress and was touched within the window.
func (r Resolver) Eligible(rnd Round, now time.Time) bool {
	if rnd.Status != StatusInProgress {
		return false
	}
	return now.Sub(rnd.touched()) <= r.window()
}

func (r Resolver) Resolve(rounds []Round, now time.Time) Resolution {
	var eligible []Round
	for _, rnd := range rounds {
		if r.Eligible(rnd, now) {
			eligible = append(eligible, rnd)
		}
	}
	if len(eligible) == 0 {
		return Resolution{}
	}
	sortNewestFirst(eligible)
	winner := eligible[0]
	res := Resolution{Active: &winner}
	if len(eligible) > 1 {
		res.Stale = append([]Round(nil), eligible[1:]...)
	}
	return res
}

func (r Resolver) window() time.Duration {
	if r.Window <= 0 {
		return DefaultResumeWindow
	}
	return r.Window
}

// sortNewestFirst orders by last touch, then start time, then session id, all descending.
func sortNewestFirst(rounds []Round) {
	sort.SliceStable(rounds, func(i, j int) bool {
		a, b := rounds[i], rounds[j]
		if !a.touched().Equal(b.touched()) {
			return a.touched().After(b.touched())
		}
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.After(b.StartedAt)
		}
		return a.SessionID > b.SessionID
	})
}
